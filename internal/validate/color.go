package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var namedColors = func() map[string]bool {
	names := strings.Fields(`aliceblue antiquewhite aqua aquamarine azure beige bisque black
	blanchedalmond blue blueviolet brown burlywood cadetblue chartreuse chocolate coral
	cornflowerblue cornsilk crimson cyan darkblue darkcyan darkgoldenrod darkgray darkgreen
	darkgrey darkkhaki darkmagenta darkolivegreen darkorange darkorchid darkred darksalmon
	darkseagreen darkslateblue darkslategray darkslategrey darkturquoise darkviolet deeppink
	deepskyblue dimgray dimgrey dodgerblue firebrick floralwhite forestgreen fuchsia gainsboro
	ghostwhite gold goldenrod gray green greenyellow grey honeydew hotpink indianred indigo
	ivory khaki lavender lavenderblush lawngreen lemonchiffon lightblue lightcoral lightcyan
	lightgoldenrodyellow lightgray lightgreen lightgrey lightpink lightsalmon lightseagreen
	lightskyblue lightslategray lightslategrey lightsteelblue lightyellow lime limegreen linen
	magenta maroon mediumaquamarine mediumblue mediumorchid mediumpurple mediumseagreen
	mediumslateblue mediumspringgreen mediumturquoise mediumvioletred midnightblue mintcream
	mistyrose moccasin navajowhite navy oldlace olive olivedrab orange orangered orchid
	palegoldenrod palegreen paleturquoise palevioletred papayawhip peachpuff peru pink plum
	powderblue purple rebeccapurple red rosybrown royalblue saddlebrown salmon sandybrown
	seagreen seashell sienna silver skyblue slateblue slategray slategrey snow springgreen
	steelblue tan teal thistle tomato turquoise violet wheat white whitesmoke yellow
	yellowgreen transparent`)
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}()

var colorFunc = regexp.MustCompile(`^(rgba?|hsla?)\((.*)\)$`)

// isColor reports whether s is a CSS color string the renderer can parse.
func isColor(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if namedColors[s] {
		return true
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		switch len(hex) {
		case 3, 4, 6, 8:
		default:
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 64)
		return err == nil
	}
	m := colorFunc.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	args := strings.FieldsFunc(m[2], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(args) != 3 && len(args) != 4 {
		return false
	}
	for i, arg := range args {
		arg = strings.TrimSuffix(arg, "%")
		if i == 0 && strings.HasPrefix(m[1], "hsl") {
			arg = strings.TrimSuffix(arg, "deg")
		}
		if _, err := strconv.ParseFloat(arg, 64); err != nil {
			return false
		}
	}
	return true
}
