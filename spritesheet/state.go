package spritesheet

// State is the stage a load has reached.
type State int

const (
	Start State = iota
	ImageDimensionsPending
	DescriptorParsing
	Validating
	AtlasBuilding
	Assembled
	Failed
)

var stateNames = [...]string{
	Start:                  "start",
	ImageDimensionsPending: "image-dimensions-pending",
	DescriptorParsing:      "descriptor-parsing",
	Validating:             "validating",
	AtlasBuilding:          "atlas-building",
	Assembled:              "assembled",
	Failed:                 "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Observer is told about every state a load enters. err is set only for
// Failed.
type Observer func(path string, s State, err error)
