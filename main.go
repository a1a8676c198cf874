package main

import "github.com/julienpequegnot/topicrank/cmd"

func main() {
	cmd.Execute()
}
