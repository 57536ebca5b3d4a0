package schema

import (
	"strings"
)

// ParseTagSetting splits `key:value;flag` tag text into upper-cased keys.
// A value may itself contain the separator when escaped with a backslash.
func ParseTagSetting(str string, sep string) map[string]string {
	settings := map[string]string{}
	names := strings.Split(str, sep)

	for i := 0; i < len(names); i++ {
		j := i
		if len(names[j]) > 0 {
			for {
				if names[j][len(names[j])-1] == '\\' {
					i++
					names[j] = names[j][0:len(names[j])-1] + sep + names[i]
					names[i] = ""
				} else {
					break
				}
			}
		}

		values := strings.Split(names[j], ":")
		k := strings.TrimSpace(strings.ToUpper(values[0]))
		if k == "" {
			continue
		}

		if len(values) >= 2 {
			settings[k] = strings.TrimSpace(strings.Join(values[1:], ":"))
		} else {
			settings[k] = k
		}
	}

	return settings
}
