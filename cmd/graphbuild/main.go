package main

import (
	"fmt"
	"io"
	"os"
)

const version = "v0.3.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	var err error
	switch command := args[0]; command {
	case "build":
		err = runBuild(args[1:], stdout, stderr)
	case "check":
		err = runCheck(args[1:], stdout, stderr)
	case "classify":
		err = runClassify(args[1:], stdout, stderr)
	case "inspect":
		err = runInspect(args[1:], stdin, stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "graphbuild %s\n", version)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "graphbuild: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	usage := `graphbuild - build and validate graph entities from manifests

Usage:
  graphbuild <command> [options]

Available Commands:
  build       Build a manifest and export the batch as JSON
  check       Build a manifest and run the configured constraints
  classify    Print the property naming classes of every entity
  inspect     Decode an exported batch and re-validate it
  help        Show this help message
  version     Show version information

Common Flags:
  -config FILE     YAML configuration (GRAPHBUILD_* variables override it)
  -manifest FILE   manifest to build

Examples:
  graphbuild build -manifest people.yaml -out people.json.sz -compress
  graphbuild check -manifest people.yaml -config graphbuild.yaml
  graphbuild inspect -in people.json.sz
`
	fmt.Fprint(w, usage)
}
