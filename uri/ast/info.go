package ast

import (
	"slices"
	"strconv"
	"strings"

	"github.com/theory/odatauri/uri/edm"
	"golang.org/x/exp/maps"
)

// Kind identifies the shape of a request.
type Kind int

//revive:disable:exported
const (
	KindService   Kind = iota // service
	KindBatch                 // $batch
	KindMetadata              // $metadata
	KindEntity                // $entity
	KindAll                   // $all
	KindCrossjoin             // $crossjoin
	KindResource              // resource
)

//nolint:gochecknoglobals
var kindNames = [...]string{"service", "$batch", "$metadata", "$entity", "$all", "$crossjoin", "resource"}

// String returns the name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Info is the result of parsing one request: its shape, its resource path,
// and its query options.
type Info struct {
	Kind Kind

	// Resources is the resource path of a KindResource request.
	Resources []Resource

	// EntityType is the type cast following $entity, if any.
	EntityType *edm.StructuredType

	// EntitySets lists the entity sets of a $crossjoin request.
	EntitySets []string

	Apply   *ApplyOption
	Compute *ComputeOption
	Filter  *FilterOption
	Search  *SearchOption
	OrderBy *OrderByOption
	Select  *SelectOption
	Expand  *ExpandOption

	Top   *int
	Skip  *int
	Index *int
	Count *bool

	Format     string
	ID         string
	SkipToken  string
	DeltaToken string

	// Aliases maps parameter alias names, without the @, to their values.
	Aliases map[string]Expression

	// CustomOptions holds query options not starting with $ or @, verbatim.
	CustomOptions map[string]string
}

// Last returns the final resource segment, or nil.
func (i *Info) Last() Resource {
	if len(i.Resources) == 0 {
		return nil
	}
	return i.Resources[len(i.Resources)-1]
}

// Path returns the canonical resource path without a leading slash.
func (i *Info) Path() string {
	switch i.Kind {
	case KindService:
		return ""
	case KindEntity:
		if i.EntityType != nil {
			return "$entity/" + i.EntityType.String()
		}
		return "$entity"
	case KindCrossjoin:
		return "$crossjoin(" + strings.Join(i.EntitySets, ",") + ")"
	case KindResource:
		return pathString(i.Resources)
	default:
		return i.Kind.String()
	}
}

// Query returns the canonical, unencoded query string without the leading
// question mark. System options come first in a fixed order, then aliases
// and custom options sorted by name.
func (i *Info) Query() string {
	var opts []string
	add := func(name string, n Node) {
		opts = append(opts, name+"="+n.String())
	}
	addText := func(name, value string) {
		if value != "" {
			opts = append(opts, name+"="+value)
		}
	}
	addInt := func(name string, value *int) {
		if value != nil {
			opts = append(opts, name+"="+strconv.Itoa(*value))
		}
	}

	if i.Apply != nil {
		add("$apply", i.Apply)
	}
	if i.Compute != nil {
		add("$compute", i.Compute)
	}
	if i.Filter != nil {
		add("$filter", i.Filter)
	}
	if i.Search != nil {
		add("$search", i.Search)
	}
	if i.OrderBy != nil {
		add("$orderby", i.OrderBy)
	}
	addInt("$skip", i.Skip)
	addInt("$top", i.Top)
	addInt("$index", i.Index)
	if i.Count != nil {
		opts = append(opts, "$count="+strconv.FormatBool(*i.Count))
	}
	if i.Select != nil {
		add("$select", i.Select)
	}
	if i.Expand != nil {
		add("$expand", i.Expand)
	}
	addText("$format", i.Format)
	addText("$id", i.ID)
	addText("$skiptoken", i.SkipToken)
	addText("$deltatoken", i.DeltaToken)

	names := maps.Keys(i.Aliases)
	slices.Sort(names)
	for _, name := range names {
		add("@"+name, i.Aliases[name])
	}

	names = maps.Keys(i.CustomOptions)
	slices.Sort(names)
	for _, name := range names {
		opts = append(opts, name+"="+i.CustomOptions[name])
	}
	return strings.Join(opts, "&")
}

// String returns the canonical request: the path, then a question mark and
// the query when there are options.
func (i *Info) String() string {
	path := i.Path()
	if q := i.Query(); q != "" {
		return path + "?" + q
	}
	return path
}
