package main

import "task-marketplace.com/task-marketplace/cmd"

func main() {
	cmd.Execute()
}
