package query

// Placeholders returns the byte offsets of the ? placeholders in sql,
// skipping quoted strings and identifiers
func Placeholders(sql string) []int {
	var (
		offsets []int
		quote   byte
	)
	for i := 0; i < len(sql); i++ {
		switch c := sql[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?':
			offsets = append(offsets, i)
		}
	}
	return offsets
}
