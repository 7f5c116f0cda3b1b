package parser

const typeRegexp = `\.([a-zA-Z0-9]+)$`
