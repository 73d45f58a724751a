package main

import "github.com/ayush/realestate-site/cmd/server/commands"

func main() {
	commands.Execute()
}
