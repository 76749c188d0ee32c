package main

import "wolfbot/cmd/wolfsim/root"

func main() {
	root.Execute()
}
