package feature

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

// Operator is a French mobile network operator. The numeric value is the MCC/MNC code used in the "Operateur" column
// of the ARCEP site list.
type Operator int

const (
	Orange  Operator = 20801
	SFR     Operator = 20810
	Free    Operator = 20815
	Bouygue Operator = 20820
)

// Operators contains all known operators ordered by their code.
var Operators = []Operator{Orange, SFR, Free, Bouygue}

func (o Operator) String() string {
	switch o {
	case Orange:
		return "Orange"
	case SFR:
		return "SFR"
	case Free:
		return "Free"
	case Bouygue:
		return "Bouygue"
	}
	return fmt.Sprintf("[!UNKNOWN Operator %d]", int(o))
}

func (o Operator) Code() int {
	return int(o)
}

func ParseOperatorCode(code int) (Operator, error) {
	for _, operator := range Operators {
		if operator.Code() == code {
			return operator, nil
		}
	}
	return 0, errors.Errorf("Unknown operator code %d", code)
}

// ParseOperatorName finds the operator by its name, ignoring case. OSM data often contains variants like "Bouygues
// Telecom" or "Orange France", therefore the name only needs to start with the operators name.
func ParseOperatorName(name string) (Operator, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))
	for _, operator := range Operators {
		if strings.HasPrefix(normalizedName, strings.ToLower(operator.String())) {
			return operator, nil
		}
	}
	return 0, errors.Errorf("Unknown operator name '%s'", name)
}

// Network is a mobile network generation.
type Network int

const (
	Network2G Network = iota
	Network3G
	Network4G
)

var Networks = []Network{Network2G, Network3G, Network4G}

func (n Network) String() string {
	switch n {
	case Network2G:
		return "2G"
	case Network3G:
		return "3G"
	case Network4G:
		return "4G"
	}
	panic(fmt.Sprintf("[!UNKNOWN Network %d]", n))
}
