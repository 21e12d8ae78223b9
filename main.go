package main

import "github.com/frahmantamala/review-system/cmd"

func main() {
	cmd.Execute()
}
