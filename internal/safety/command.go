package safety

import (
	"fmt"
	"strings"
)

// forbiddenSequences enable command chaining, substitution or redirection.
// "&" and "|" also catch their doubled forms.
var forbiddenSequences = []string{"\n", ";", "&", "|", "`", "$(", ">", "<"}

// ValidateTestCommand is the structural guard over the script-based test
// representation: the command must actually exercise the secret (contain
// $VALUE) and must not contain any shell metacharacter that would allow
// chaining a second command onto it. Carriage returns are stripped first so
// a \r line ending cannot smuggle a newline past the check.
func ValidateTestCommand(command string) Result {
	command = strings.ReplaceAll(command, "\r", "\n")

	if !strings.Contains(command, "$VALUE") {
		return fail("command must include the $VALUE placeholder")
	}

	for _, seq := range forbiddenSequences {
		if strings.Contains(command, seq) {
			if seq == "\n" {
				return fail("command must be a single line")
			}
			return fail(fmt.Sprintf("command must not contain %q", seq))
		}
	}

	return ok()
}
