package selection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/repomirror/internal/platform"
)

const (
	tailPrefixConstant                     = "^"
	rangeSeparatorConstant                 = "-"
	parseErrorTemplateConstant             = "selection token %q: %s"
	indexOutOfRangeMessageTemplateConstant = "index out of range (valid 1-%d)"
	emptyRangeMessageTemplateConstant      = "range start %d exceeds end %d"
	unknownRepositoryMessageConstant       = "unknown repository name"
	emptyTailMessageConstant               = "tail marker requires an index"
)

// ParseError reports an exclusion token that could not be interpreted.
type ParseError struct {
	Token   string
	Message string
}

// Error names the offending token.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Token, parseError.Message)
}

// ExclusionSet holds one-based positions excluded from a repository list.
type ExclusionSet map[int]struct{}

// Contains reports whether the one-based position is excluded.
func (exclusions ExclusionSet) Contains(position int) bool {
	_, excluded := exclusions[position]
	return excluded
}

// ParseExclusionLine interprets a whitespace-separated exclusion expression
// against the enumerated repository names. Supported tokens: a one-based
// index, an inclusive index range i-j, a tail marker ^i excluding position i
// and everything after it, and a literal repository name. Any uninterpretable
// token rejects the whole line.
func ParseExclusionLine(expressionLine string, repositoryNames []string) (ExclusionSet, error) {
	exclusions := ExclusionSet{}
	repositoryCount := len(repositoryNames)

	for _, expressionToken := range strings.Fields(expressionLine) {
		if position, isIndex := parseIndexToken(expressionToken); isIndex {
			if position < 1 || position > repositoryCount {
				return nil, ParseError{Token: expressionToken, Message: fmt.Sprintf(indexOutOfRangeMessageTemplateConstant, repositoryCount)}
			}
			exclusions[position] = struct{}{}
			continue
		}

		if rangeStart, rangeEnd, isRange := parseRangeToken(expressionToken); isRange {
			if rangeStart < 1 || rangeEnd > repositoryCount {
				return nil, ParseError{Token: expressionToken, Message: fmt.Sprintf(indexOutOfRangeMessageTemplateConstant, repositoryCount)}
			}
			if rangeStart > rangeEnd {
				return nil, ParseError{Token: expressionToken, Message: fmt.Sprintf(emptyRangeMessageTemplateConstant, rangeStart, rangeEnd)}
			}
			for position := rangeStart; position <= rangeEnd; position++ {
				exclusions[position] = struct{}{}
			}
			continue
		}

		if tailStart, isTail, tailError := parseTailToken(expressionToken); isTail {
			if tailError != nil {
				return nil, tailError
			}
			if tailStart < 1 || tailStart > repositoryCount {
				return nil, ParseError{Token: expressionToken, Message: fmt.Sprintf(indexOutOfRangeMessageTemplateConstant, repositoryCount)}
			}
			for position := tailStart; position <= repositoryCount; position++ {
				exclusions[position] = struct{}{}
			}
			continue
		}

		namePosition := indexOfRepositoryName(repositoryNames, expressionToken)
		if namePosition == 0 {
			return nil, ParseError{Token: expressionToken, Message: unknownRepositoryMessageConstant}
		}
		exclusions[namePosition] = struct{}{}
	}

	return exclusions, nil
}

// Select returns the repositories whose one-based position is not excluded,
// preserving the input order.
func Select(repositories []platform.RepositoryDescriptor, exclusions ExclusionSet) []platform.RepositoryDescriptor {
	selected := make([]platform.RepositoryDescriptor, 0, len(repositories))
	for repositoryIndex, repository := range repositories {
		if exclusions.Contains(repositoryIndex + 1) {
			continue
		}
		selected = append(selected, repository)
	}
	return selected
}

func parseIndexToken(expressionToken string) (int, bool) {
	position, conversionError := strconv.Atoi(expressionToken)
	if conversionError != nil {
		return 0, false
	}
	return position, true
}

// parseRangeToken recognizes i-j only when both sides are plain integers, so
// repository names containing hyphens are never mistaken for ranges.
func parseRangeToken(expressionToken string) (int, int, bool) {
	separatorIndex := strings.Index(expressionToken, rangeSeparatorConstant)
	if separatorIndex <= 0 || separatorIndex == len(expressionToken)-1 {
		return 0, 0, false
	}

	rangeStart, startError := strconv.Atoi(expressionToken[:separatorIndex])
	if startError != nil {
		return 0, 0, false
	}
	rangeEnd, endError := strconv.Atoi(expressionToken[separatorIndex+1:])
	if endError != nil {
		return 0, 0, false
	}
	return rangeStart, rangeEnd, true
}

func parseTailToken(expressionToken string) (int, bool, error) {
	if !strings.HasPrefix(expressionToken, tailPrefixConstant) {
		return 0, false, nil
	}

	tailArgument := expressionToken[len(tailPrefixConstant):]
	if len(tailArgument) == 0 {
		return 0, true, ParseError{Token: expressionToken, Message: emptyTailMessageConstant}
	}

	tailStart, conversionError := strconv.Atoi(tailArgument)
	if conversionError != nil {
		return 0, true, ParseError{Token: expressionToken, Message: emptyTailMessageConstant}
	}
	return tailStart, true, nil
}

func indexOfRepositoryName(repositoryNames []string, candidateName string) int {
	for nameIndex, repositoryName := range repositoryNames {
		if repositoryName == candidateName {
			return nameIndex + 1
		}
	}
	return 0
}
