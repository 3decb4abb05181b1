package main

import "github.com/maastricht-university/lipsync-pipeline/cmd"

func main() {
	cmd.Execute()
}
