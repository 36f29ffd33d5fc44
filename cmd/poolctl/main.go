// Command poolctl exercises and inspects the object pool allocator.
package main

func main() {
	execute()
}
