// Package cli is the command line front end of stepflow. It parses flags,
// layers them over the settings file, and maps each subcommand onto one
// session operation. The shell subcommand keeps a single session open and
// runs the same subcommands line by line.
package cli
