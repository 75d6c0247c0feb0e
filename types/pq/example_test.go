package pq_test

import (
	"fmt"

	"github.com/xanlib/tools-common/types/pq"
)

func Example() {
	queue := pq.New[string](pq.Options{})
	defer queue.Destroy()

	queue.Put("compact", 1) //nolint:errcheck
	backup, _ := queue.Put("backup", 2)
	queue.Put("restore", 3) //nolint:errcheck

	// The backup has become urgent
	queue.Reprioritize(backup, 10) //nolint:errcheck

	for !queue.IsEmpty() {
		job, _ := queue.Get()
		fmt.Println(job)
	}

	// Output:
	// backup
	// restore
	// compact
}

func ExampleQueue_Remove() {
	queue := pq.New[string](pq.Options{})
	defer queue.Destroy()

	queue.Put("first", 1) //nolint:errcheck
	second, _ := queue.Put("second", 2)

	removed, _ := queue.Remove(second)
	fmt.Println("removed", removed)

	_, err := queue.Remove(second)
	fmt.Println(err)

	// Output:
	// removed second
	// could not remove element: handle (slot 1, generation 0): usage violation: handle is stale
}
