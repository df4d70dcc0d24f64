package domain

// BlendMode names the compositing mode of a layer.
type BlendMode string

const (
	BlendPassThrough  BlendMode = "passThrough"
	BlendNormal       BlendMode = "normal"
	BlendDissolve     BlendMode = "dissolve"
	BlendDarken       BlendMode = "darken"
	BlendMultiply     BlendMode = "multiply"
	BlendColorBurn    BlendMode = "colorBurn"
	BlendLinearBurn   BlendMode = "linearBurn"
	BlendDarkerColor  BlendMode = "darkerColor"
	BlendLighten      BlendMode = "lighten"
	BlendScreen       BlendMode = "screen"
	BlendColorDodge   BlendMode = "colorDodge"
	BlendLinearDodge  BlendMode = "linearDodge"
	BlendLighterColor BlendMode = "lighterColor"
	BlendOverlay      BlendMode = "overlay"
	BlendSoftLight    BlendMode = "softLight"
	BlendHardLight    BlendMode = "hardLight"
	BlendVividLight   BlendMode = "vividLight"
	BlendLinearLight  BlendMode = "linearLight"
	BlendPinLight     BlendMode = "pinLight"
	BlendHardMix      BlendMode = "hardMix"
	BlendDifference   BlendMode = "difference"
	BlendExclusion    BlendMode = "exclusion"
	BlendSubtract     BlendMode = "subtract"
	BlendDivide       BlendMode = "divide"
	BlendHue          BlendMode = "hue"
	BlendSaturation   BlendMode = "saturation"
	BlendColor        BlendMode = "color"
	BlendLuminosity   BlendMode = "luminosity"
)

var blendModes = map[BlendMode]struct{}{
	BlendPassThrough: {}, BlendNormal: {}, BlendDissolve: {}, BlendDarken: {},
	BlendMultiply: {}, BlendColorBurn: {}, BlendLinearBurn: {}, BlendDarkerColor: {},
	BlendLighten: {}, BlendScreen: {}, BlendColorDodge: {}, BlendLinearDodge: {},
	BlendLighterColor: {}, BlendOverlay: {}, BlendSoftLight: {}, BlendHardLight: {},
	BlendVividLight: {}, BlendLinearLight: {}, BlendPinLight: {}, BlendHardMix: {},
	BlendDifference: {}, BlendExclusion: {}, BlendSubtract: {}, BlendDivide: {},
	BlendHue: {}, BlendSaturation: {}, BlendColor: {}, BlendLuminosity: {},
}

// ParseBlendMode maps a mode name to a BlendMode. Unknown names become BlendNormal.
func ParseBlendMode(s string) BlendMode {
	m := BlendMode(s)
	if _, ok := blendModes[m]; ok {
		return m
	}
	return BlendNormal
}
