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

/*
Package trace implements the native layers of both backends by appending every call to a
Log. Memory handed out by the explicit device is real so uploads can be inspected.
*/
package trace

import (
	"fmt"
	"strings"
	"sync"

	"goarrg.com/rhi/cmdlist"
)

type Entry struct {
	Name string
	Args []any
}

func (e Entry) String() string {
	sb := strings.Builder{}
	sb.WriteString(e.Name)
	sb.WriteRune('(')
	for i, a := range e.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", a)
	}
	sb.WriteRune(')')
	return sb.String()
}

// Log is safe for concurrent use, natives of several command lists may share one.
type Log struct {
	mtx     sync.Mutex
	entries []Entry
	handle  cmdlist.Handle
}

func NewLog() *Log {
	return &Log{handle: 0x1000}
}

func (l *Log) Record(name string, args ...any) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.entries = append(l.entries, Entry{Name: name, Args: args})
}

// NewHandle returns a unique non null handle.
func (l *Log) NewHandle() cmdlist.Handle {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.handle++
	return l.handle
}

func (l *Log) Entries() []Entry {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return append([]Entry(nil), l.entries...)
}

func (l *Log) Names() []string {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.Name
	}
	return names
}

func (l *Log) Find(name string) []Entry {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	var found []Entry
	for _, e := range l.entries {
		if e.Name == name {
			found = append(found, e)
		}
	}
	return found
}

func (l *Log) Count(name string) int {
	return len(l.Find(name))
}

func (l *Log) Len() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.entries)
}

func (l *Log) Clear() {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.entries = nil
}

func (l *Log) String() string {
	sb := strings.Builder{}
	for _, e := range l.Entries() {
		sb.WriteString(e.String())
		sb.WriteRune('\n')
	}
	return sb.String()
}
