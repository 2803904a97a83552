package migration

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/repomirror/internal/platform"
	"github.com/temirov/repomirror/internal/selection"
)

const (
	repositoryListingHeaderConstant        = "Repositories available for migration:\n"
	repositoryListingEntryTemplateConstant = "%4d. %s\n"
	repositoryListingEntryWithDescription  = "%4d. %s - %s\n"
	exclusionPromptConstant                = "Enter repositories to exclude (indices, ranges i-j, ^i for i and after, or names; empty for none): "
	selectionHeaderConstant                = "Repositories selected for migration:\n"
	confirmationPromptTemplateConstant     = "Migrate %d repositories? [y/N]: "
	affirmativeShortResponseConstant       = "y"
	affirmativeLongResponseConstant        = "yes"
)

// SelectionPrompter gathers interactive exclusion and confirmation responses.
type SelectionPrompter interface {
	PromptExclusions(repositories []platform.RepositoryDescriptor) (selection.ExclusionSet, error)
	ConfirmMigration(selectedRepositories []platform.RepositoryDescriptor) (bool, error)
}

// IOSelectionPrompter reads selection responses from an io.Reader.
type IOSelectionPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOSelectionPrompter constructs a prompter from the provided reader and writer.
func NewIOSelectionPrompter(input io.Reader, output io.Writer) *IOSelectionPrompter {
	return &IOSelectionPrompter{reader: bufio.NewReader(input), writer: output}
}

// PromptExclusions enumerates the repositories, reads one exclusion
// expression, and parses it against the enumerated names.
func (prompter *IOSelectionPrompter) PromptExclusions(repositories []platform.RepositoryDescriptor) (selection.ExclusionSet, error) {
	if writeError := prompter.writeListing(repositories); writeError != nil {
		return nil, writeError
	}

	expressionLine, readError := prompter.readLine(exclusionPromptConstant)
	if readError != nil {
		return nil, readError
	}

	repositoryNames := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		repositoryNames = append(repositoryNames, repository.Name)
	}

	return selection.ParseExclusionLine(expressionLine, repositoryNames)
}

// ConfirmMigration prints the selected repositories and interprets
// affirmative responses (y/yes).
func (prompter *IOSelectionPrompter) ConfirmMigration(selectedRepositories []platform.RepositoryDescriptor) (bool, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, selectionHeaderConstant); writeError != nil {
			return false, writeError
		}
		for repositoryIndex, repository := range selectedRepositories {
			if _, writeError := fmt.Fprintf(prompter.writer, repositoryListingEntryTemplateConstant, repositoryIndex+1, repository.Name); writeError != nil {
				return false, writeError
			}
		}
	}

	response, readError := prompter.readLine(fmt.Sprintf(confirmationPromptTemplateConstant, len(selectedRepositories)))
	if readError != nil {
		return false, readError
	}

	switch strings.TrimSpace(strings.ToLower(response)) {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	default:
		return false, nil
	}
}

func (prompter *IOSelectionPrompter) writeListing(repositories []platform.RepositoryDescriptor) error {
	if prompter.writer == nil {
		return nil
	}

	if _, writeError := io.WriteString(prompter.writer, repositoryListingHeaderConstant); writeError != nil {
		return writeError
	}

	for repositoryIndex, repository := range repositories {
		var writeError error
		if len(repository.Description) > 0 {
			_, writeError = fmt.Fprintf(prompter.writer, repositoryListingEntryWithDescription, repositoryIndex+1, repository.Name, repository.Description)
		} else {
			_, writeError = fmt.Fprintf(prompter.writer, repositoryListingEntryTemplateConstant, repositoryIndex+1, repository.Name)
		}
		if writeError != nil {
			return writeError
		}
	}

	return nil
}

func (prompter *IOSelectionPrompter) readLine(prompt string) (string, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return "", writeError
		}
	}

	responseLine, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return "", readError
	}
	return responseLine, nil
}
