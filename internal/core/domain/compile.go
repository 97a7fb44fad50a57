package domain

import (
	"bytes"
	"encoding/json"
	"maps"
)

// Destination is where a source file's compiled artifact lives, or the marker
// saying the file is explicitly ignored and must be loaded as-is.
type Destination struct {
	Path    string
	Ignored bool
}

// IgnoredDestination is the marker for files excluded by the project's ignore rules.
var IgnoredDestination = Destination{Ignored: true}

type ignoredMarker struct {
	Ignored bool `json:"ignored"`
}

// MarshalJSON encodes a compiled destination as a string and the ignored marker as
// {"ignored": true}.
func (d Destination) MarshalJSON() ([]byte, error) {
	if d.Ignored {
		return json.Marshal(ignoredMarker{Ignored: true})
	}
	return json.Marshal(d.Path)
}

// UnmarshalJSON accepts both wire forms.
func (d *Destination) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var marker ignoredMarker
		if err := json.Unmarshal(data, &marker); err != nil {
			return err
		}
		*d = Destination{Ignored: marker.Ignored}
		return nil
	}
	var p string
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Destination{Path: p}
	return nil
}

// DestinationMap maps absolute source paths to their destinations.
type DestinationMap map[string]Destination

// CompiledFile is one source file's artifact within a build group.
type CompiledFile struct {
	Source      string
	Root        string
	Destination string
	Options     CompilerOptions
	// Hash is the xxhash of the compiled content.
	Hash uint64
}

// BuildGroup is the set of source files compiled together for one root.
type BuildGroup struct {
	Root      string
	Project   *Project
	Members   map[string]struct{}
	Artifacts map[string]*CompiledFile
}

// NewBuildGroup creates an empty group for project.
func NewBuildGroup(project *Project) *BuildGroup {
	return &BuildGroup{
		Root:      project.Root,
		Project:   project,
		Members:   make(map[string]struct{}),
		Artifacts: make(map[string]*CompiledFile),
	}
}

// Destinations returns the destination map for every compiled member.
func (g *BuildGroup) Destinations() DestinationMap {
	out := make(DestinationMap, len(g.Artifacts))
	for src, artifact := range g.Artifacts {
		out[src] = Destination{Path: artifact.Destination}
	}
	return out
}

// Clone returns a copy of m.
func (m DestinationMap) Clone() DestinationMap {
	return maps.Clone(m)
}

// TransformRequest is what the compiler engine receives for one file.
type TransformRequest struct {
	Source  string
	Root    string
	OutDir  string
	Options CompilerOptions
}

// TransformResult is what the compiler engine returns for one file.
type TransformResult struct {
	Code        []byte
	Destination string
}
