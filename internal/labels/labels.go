package labels

import (
	"fmt"
	"strings"
)

// Base is a behavior class independent of the layer that produced it.
type Base uint8

const (
	Missing Base = iota
	Jump
	Walk
	Stationary
	Freeze
	// ResistantFreeze is the promoted Behavior-layer label. It is not a valid
	// value in any other layer.
	ResistantFreeze
)

var baseNames = [...]string{
	Missing:         "",
	Jump:            "Jump",
	Walk:            "Walk",
	Stationary:      "Stationary",
	Freeze:          "Freeze",
	ResistantFreeze: "Resistant_Freeze",
}

func (b Base) String() string {
	if int(b) < len(baseNames) {
		return baseNames[b]
	}
	return fmt.Sprintf("Base(%d)", uint8(b))
}

// IsMissing reports whether b carries no label.
func (b Base) IsMissing() bool { return b == Missing }

// ParseBase resolves a configuration token (case-insensitive) such as
// "walk" or "stationary" to a base class. Only the four base behaviors are
// accepted.
func ParseBase(token string) (Base, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "jump":
		return Jump, nil
	case "walk":
		return Walk, nil
	case "stationary":
		return Stationary, nil
	case "freeze":
		return Freeze, nil
	default:
		return Missing, fmt.Errorf("unknown behavior %q", token)
	}
}

// Layer identifies the namespace a label stream belongs to.
type Layer uint8

const (
	Layer1 Layer = iota + 1
	Layer2
	Resistant
	Behavior
)

func (l Layer) String() string {
	switch l {
	case Layer1:
		return "Layer1"
	case Layer2:
		return "Layer2"
	case Resistant:
		return "Resistant"
	case Behavior:
		return "Behavior"
	default:
		return fmt.Sprintf("Layer(%d)", uint8(l))
	}
}

// prefix is the string namespace for rendered labels. Behavior labels are
// rendered bare.
func (l Layer) prefix() string {
	switch l {
	case Layer1:
		return "Layer1_"
	case Layer2:
		return "Layer2_"
	case Resistant:
		return "Resistant_"
	default:
		return ""
	}
}

// Allows reports whether base is part of the layer's vocabulary.
func (l Layer) Allows(b Base) bool {
	switch b {
	case Missing:
		return true
	case Jump:
		return l == Layer1 || l == Layer2 || l == Behavior
	case Walk, Stationary, Freeze:
		return l >= Layer1 && l <= Behavior
	case ResistantFreeze:
		return l == Behavior
	default:
		return false
	}
}

// Format renders base in the layer's namespace. Missing renders as "".
func (l Layer) Format(b Base) string {
	if b == Missing {
		return ""
	}
	if !l.Allows(b) {
		panic(fmt.Sprintf("labels: %s is not in the %s vocabulary", b, l))
	}
	return l.prefix() + b.String()
}

// Parse decodes a rendered label belonging to layer l. The layer prefix is
// stripped exactly once; labels from other namespaces are rejected.
func Parse(l Layer, s string) (Base, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return Missing, nil
	}
	rest := s
	if p := l.prefix(); p != "" {
		var ok bool
		rest, ok = strings.CutPrefix(s, p)
		if !ok {
			return Missing, fmt.Errorf("label %q is not in the %s namespace", s, l)
		}
	}
	for b := Jump; b <= ResistantFreeze; b++ {
		if baseNames[b] == rest && l.Allows(b) {
			return b, nil
		}
	}
	return Missing, fmt.Errorf("label %q is not in the %s vocabulary", s, l)
}
