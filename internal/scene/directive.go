package scene

// Loc is the position of a directive in its source.
type Loc struct {
	File string
	Line int
}

// Directive is one parsed statement of a scene description.
type Directive struct {
	Name    string
	Strings []string
	Numbers []float64
	Params  ParamSet
	Loc     Loc
}

type argShape int

const (
	argNone argShape = iota
	argNumbers
	argBracketNumbers
	argStrings
	argIdent
	argOneOrTwoStrings
)

type grammar struct {
	shape  argShape
	count  int
	params bool
}

// directives lists every directive and the arguments it takes.
var directives = map[string]grammar{
	"Accelerator":        {shape: argStrings, count: 1, params: true},
	"ActiveTransform":    {shape: argIdent},
	"AttributeBegin":     {shape: argNone},
	"AttributeEnd":       {shape: argNone},
	"AreaLightSource":    {shape: argStrings, count: 1, params: true},
	"Camera":             {shape: argStrings, count: 1, params: true},
	"ConcatTransform":    {shape: argBracketNumbers, count: 16},
	"CoordinateSystem":   {shape: argStrings, count: 1},
	"CoordSysTransform":  {shape: argStrings, count: 1},
	"Film":               {shape: argStrings, count: 1, params: true},
	"Identity":           {shape: argNone},
	"Include":            {shape: argStrings, count: 1},
	"Integrator":         {shape: argStrings, count: 1, params: true},
	"LightSource":        {shape: argStrings, count: 1, params: true},
	"LookAt":             {shape: argNumbers, count: 9},
	"MakeNamedMaterial":  {shape: argStrings, count: 1, params: true},
	"MakeNamedMedium":    {shape: argStrings, count: 1, params: true},
	"Material":           {shape: argStrings, count: 1, params: true},
	"MediumInterface":    {shape: argOneOrTwoStrings},
	"NamedMaterial":      {shape: argStrings, count: 1},
	"ObjectBegin":        {shape: argStrings, count: 1},
	"ObjectEnd":          {shape: argNone},
	"ObjectInstance":     {shape: argStrings, count: 1},
	"PixelFilter":        {shape: argStrings, count: 1, params: true},
	"ReverseOrientation": {shape: argNone},
	"Rotate":             {shape: argNumbers, count: 4},
	"Sampler":            {shape: argStrings, count: 1, params: true},
	"Scale":              {shape: argNumbers, count: 3},
	"Shape":              {shape: argStrings, count: 1, params: true},
	"Texture":            {shape: argStrings, count: 3, params: true},
	"Transform":          {shape: argBracketNumbers, count: 16},
	"TransformBegin":     {shape: argNone},
	"TransformEnd":       {shape: argNone},
	"TransformTimes":     {shape: argNumbers, count: 2},
	"Translate":          {shape: argNumbers, count: 3},
	"WorldBegin":         {shape: argNone},
	"WorldEnd":           {shape: argNone},
}

// activeTransformArgs are the accepted ActiveTransform selectors.
var activeTransformArgs = map[string]bool{
	"All":       true,
	"StartTime": true,
	"EndTime":   true,
}
