package main

import "github.com/Leganyst/booking-engine/cmd"

func main() {
	cmd.Execute()
}
