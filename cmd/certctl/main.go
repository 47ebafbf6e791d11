// Command certctl is a terminal client for the certvault API.
package main

func main() {
	Execute()
}
