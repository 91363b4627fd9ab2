/*
Copyright 2025 The goARRG Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goarrg.com/debug"
	"goarrg.com/rhi/cmdlist"
)

var flags flag.FlagSet

func main() {
	debug.SetLevel(debug.LogLevelWarn)

	flags.Usage = help
	flags.Init("", flag.ExitOnError)

	v := flags.Bool("v", false, "Verbose - Print high level tasks")
	vv := flags.Bool("vv", false, "Very Verbose - Print everything")

	b := backend(0)
	flags.TextVar(&b, "backend", backendExplicit, "Sets the backend the script is recorded against.\n"+
		"Valid values are \"immediate\" and \"explicit\".")
	flip := flags.Bool("flip-viewport", false, "Records viewports with a bottom left origin on the explicit backend.")
	maxVertexBuffers := flags.Uint("max-vertex-buffers", uint(cmdlist.DefaultConfig().MaxVertexBuffers), "Sets the number of vertex buffer slots per list.")
	maxViewports := flags.Uint("max-viewports", uint(cmdlist.DefaultConfig().MaxViewports), "Sets the number of viewport and scissor slots per list.")

	err := flags.Parse(os.Args[1:])
	if err != nil {
		panic(err)
	}

	if *v {
		debug.SetLevel(debug.LogLevelInfo)
	} else if *vv {
		debug.SetLevel(debug.LogLevelVerbose)
	}

	args := flags.Args()
	if len(args) == 0 {
		debug.EPrintf("No script provided.")
		help()
		os.Exit(2)
	} else if len(args) > 1 {
		debug.EPrintf("cmdlistc can only replay one script at a time.")
		help()
		os.Exit(2)
	}

	config := cmdlist.DefaultConfig()
	config.FlipViewport = *flip
	config.MaxVertexBuffers = uint32(*maxVertexBuffers)
	config.MaxViewports = uint32(*maxViewports)
	if err := config.Validate(); err != nil {
		debug.EPrintf("%s", err)
		os.Exit(2)
	}

	f, err := os.Open(args[0])
	if err != nil {
		panic(err)
	}
	defer f.Close()

	s, err := parseScript(f)
	if err != nil {
		debug.EPrintf("%s", debug.ErrorWrapf(err, "Failed to load %q", args[0]))
		os.Exit(1)
	}

	debug.IPrintf("Replaying %d list(s)", len(s.Lists))
	result, err := replay(s, b, config)
	if err != nil {
		debug.EPrintf("%s", err)
		os.Exit(1)
	}
	result.print(os.Stdout)
}

func help() {
	fmt.Fprintf(os.Stderr, "cmdlistc replays a YAML script of resources and command lists against the trace\n"+
		"natives of one backend and prints every native call the lists emit.\n"+
		"\nEach list is recorded on its own goroutine with its own copy of the script's resources.\n"+
		"\n")
	args := ""
	flags.VisitAll(func(f *flag.Flag) {
		n, u := flag.UnquoteUsage(f)
		if f.DefValue != "" {
			u += "\n\nDefaults to \"" + f.DefValue + "\"."
		}
		args += "\t-" + f.Name + " " + n + "\n\t\t" + strings.ReplaceAll(strings.TrimSpace(u), "\n", "\n\t\t") + "\n"
	})
	fmt.Fprintf(os.Stderr, "Usage:\n\t%s [arguments] <script>\n\nArguments:\n%s", filepath.Base(os.Args[0]), args)
}
