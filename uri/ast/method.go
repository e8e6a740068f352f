package ast

// MethodKind identifies a built-in function of the expression grammar.
type MethodKind int

//revive:disable:exported
const (
	MethodContains           MethodKind = iota // contains
	MethodStartsWith                           // startswith
	MethodEndsWith                             // endswith
	MethodLength                               // length
	MethodIndexOf                              // indexof
	MethodSubstring                            // substring
	MethodMatchesPattern                       // matchesPattern
	MethodToLower                              // tolower
	MethodToUpper                              // toupper
	MethodTrim                                 // trim
	MethodConcat                               // concat
	MethodHasSubset                            // hassubset
	MethodHasSubsequence                       // hassubsequence
	MethodYear                                 // year
	MethodMonth                                // month
	MethodDay                                  // day
	MethodHour                                 // hour
	MethodMinute                               // minute
	MethodSecond                               // second
	MethodFractionalSeconds                    // fractionalseconds
	MethodTotalSeconds                         // totalseconds
	MethodDate                                 // date
	MethodTime                                 // time
	MethodTotalOffsetMinutes                   // totaloffsetminutes
	MethodNow                                  // now
	MethodMinDateTime                          // mindatetime
	MethodMaxDateTime                          // maxdatetime
	MethodRound                                // round
	MethodFloor                                // floor
	MethodCeiling                              // ceiling
	MethodGeoDistance                          // geo.distance
	MethodGeoIntersects                        // geo.intersects
	MethodGeoLength                            // geo.length
	MethodCast                                 // cast
	MethodIsOf                                 // isof
	methodCount
)

//nolint:gochecknoglobals
var methodNames = [methodCount]string{
	"contains", "startswith", "endswith", "length", "indexof", "substring",
	"matchesPattern", "tolower", "toupper", "trim", "concat", "hassubset",
	"hassubsequence", "year", "month", "day", "hour", "minute", "second",
	"fractionalseconds", "totalseconds", "date", "time", "totaloffsetminutes",
	"now", "mindatetime", "maxdatetime", "round", "floor", "ceiling",
	"geo.distance", "geo.intersects", "geo.length", "cast", "isof",
}

// String returns the URL name of the method.
func (k MethodKind) String() string {
	if k < 0 || k >= methodCount {
		return "unknown"
	}
	return methodNames[k]
}

// LookupMethod returns the method named name. Method names are case
// sensitive.
func LookupMethod(name string) (MethodKind, bool) {
	for i, n := range methodNames {
		if n == name {
			return MethodKind(i), true
		}
	}
	return 0, false
}

// Arity returns the minimum and maximum number of parameters accepted by k.
func (k MethodKind) Arity() (int, int) {
	switch k {
	case MethodNow, MethodMinDateTime, MethodMaxDateTime:
		return 0, 0
	case MethodContains, MethodStartsWith, MethodEndsWith, MethodIndexOf,
		MethodConcat, MethodMatchesPattern, MethodHasSubset,
		MethodHasSubsequence, MethodGeoDistance, MethodGeoIntersects:
		return 2, 2
	case MethodSubstring:
		return 2, 3
	case MethodCast, MethodIsOf:
		return 1, 2
	default:
		return 1, 1
	}
}
