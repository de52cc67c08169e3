package main

import "github.com/example/squash-scheduler/cmd"

func main() {
	cmd.Execute()
}
