package main

import "mealweek/cmd/mealweek/cmd"

func main() {
	cmd.Execute()
}
