package placeholder

const (
	markerRegexp      = `\{\{([A-Z0-9_]+)\}\}`
	wholeMarkerRegexp = `^` + markerRegexp + `$`
)
