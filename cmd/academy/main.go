package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	daemonAddr = "http://127.0.0.1:7438"
	pidFile    = "academyd.pid"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit()
	case "start":
		err = cmdStart()
	case "stop":
		err = cmdStop()
	case "status":
		err = cmdStatus()
	case "logs":
		err = cmdLogs()
	case "config":
		err = cmdConfig()
	case "course":
		err = cmdCourse(os.Args[2:])
	case "session":
		err = cmdSession(os.Args[2:])
	case "stats":
		err = cmdStats(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("academy %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Academy - Local companion for the Academy learning site

Usage:
  academy <command> [arguments]

Setup Commands:
  init                Initialize Academy (first-time setup)
  config              Show current configuration

Daemon Commands:
  start               Start the Academy daemon
  stop                Stop the Academy daemon
  status              Show daemon status
  logs                View daemon logs

Course Commands:
  course start <id>        Start (or resume) a course
  course continue <id>     Show the item to continue with
  course complete <id> <item>  Mark an item completed

Session Commands:
  session open <course> <item>  Open an exercise session
  session show <id>             Show session state
  session code <id> <file>      Load code into the session buffer
  session run <id>              Run the current buffer
  session submit <id>           Submit the current buffer for grading
  session solution <id>         Show the exercise solution
  session dismiss <id>          Dismiss the completion prompt
  session close <id>            Discard a session

Stats Commands:
  stats <exercise-id>           Show attempt statistics for an exercise
  stats attempts <exercise-id>  List recent attempts

Other:
  help            Show this help message
  version         Show version information

Examples:
  academy start                 # Start daemon
  academy course continue 3     # Where did I leave off?
  academy session open 3 42     # Open item 42 of course 3
  academy session run <id>      # Run the buffer`)
}
