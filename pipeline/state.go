package pipeline

import (
	"context"
	"encoding/json"
)

// State is one step of the per-(suite,section,arch) partition FSM
// (spec §4.7 "Driver"), modeled on indexer/controller's State type:
// an enum with a stateToStateFunc dispatch table and the bare
// Terminal/non-terminal distinction the run loop checks.
type State int

const (
	Terminal State = iota
	CheckRepoInfo
	Partition
	ExtractPackages
	MergeResults
	WriteStats
)

func (s State) String() string {
	switch s {
	case Terminal:
		return "Terminal"
	case CheckRepoInfo:
		return "CheckRepoInfo"
	case Partition:
		return "Partition"
	case ExtractPackages:
		return "ExtractPackages"
	case MergeResults:
		return "MergeResults"
	case WriteStats:
		return "WriteStats"
	default:
		return "Unknown"
	}
}

func (s *State) FromString(v string) {
	switch v {
	case "CheckRepoInfo":
		*s = CheckRepoInfo
	case "Partition":
		*s = Partition
	case "ExtractPackages":
		*s = ExtractPackages
	case "MergeResults":
		*s = MergeResults
	case "WriteStats":
		*s = WriteStats
	default:
		*s = Terminal
	}
}

func (s State) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *State) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.FromString(v)
	return nil
}

var stateToStateFunc = map[State]func(ctx context.Context, s *Stage) (State, error){
	CheckRepoInfo:   checkRepoInfo,
	Partition:       partitionStep,
	ExtractPackages: extractPackagesStep,
	MergeResults:    mergeResultsStep,
	WriteStats:      writeStatsStep,
}
