package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mschirtzinger/jira/internal/models"
)

// ErrCancelled is returned by a prompt the user backed out of.
var ErrCancelled = errors.New("cancelled")

// Prompts collects the input an action needs before it can run.
type Prompts interface {
	CreateEpic() (models.Epic, error)
	CreateStory() (models.Story, error)
	// UpdateStatus returns ErrCancelled when no valid status was chosen.
	UpdateStatus() (models.Status, error)
	DeleteEpic() (bool, error)
	DeleteStory() (bool, error)
}

const (
	deleteEpicQuestion  = "Are you sure you want to delete this epic? All stories in this epic will also be deleted"
	deleteStoryQuestion = "Are you sure you want to delete this story?"
)

// LinePrompts asks questions one line at a time. It works on any reader,
// so it is used when stdin is not a terminal.
type LinePrompts struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompts creates line based prompts over in and out.
func NewLinePrompts(in *bufio.Reader, out io.Writer) *LinePrompts {
	return &LinePrompts{in: in, out: out}
}

func (p *LinePrompts) ask(question string) (string, error) {
	fmt.Fprintln(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *LinePrompts) CreateEpic() (models.Epic, error) {
	fmt.Fprintln(p.out, "----------------------------")
	name, err := p.ask("Epic Name:")
	if err != nil {
		return models.Epic{}, err
	}
	description, err := p.ask("Epic Description:")
	if err != nil {
		return models.Epic{}, err
	}
	return models.NewEpic(name, description), nil
}

func (p *LinePrompts) CreateStory() (models.Story, error) {
	fmt.Fprintln(p.out, "----------------------------")
	name, err := p.ask("Story Name:")
	if err != nil {
		return models.Story{}, err
	}
	description, err := p.ask("Story Description:")
	if err != nil {
		return models.Story{}, err
	}
	return models.NewStory(name, description), nil
}

func (p *LinePrompts) UpdateStatus() (models.Status, error) {
	fmt.Fprintln(p.out, "----------------------------")
	answer, err := p.ask("New Status (1 - OPEN, 2 - IN-PROGRESS, 3 - RESOLVED, 4 - CLOSED):")
	if err != nil {
		return "", err
	}
	status, err := models.ParseStatus(answer)
	if err != nil {
		return "", ErrCancelled
	}
	return status, nil
}

func (p *LinePrompts) confirm(question string) (bool, error) {
	fmt.Fprintln(p.out, "----------------------------")
	answer, err := p.ask(question + " [Y/n]:")
	if err != nil {
		return false, err
	}
	return answer == "Y" || answer == "y", nil
}

func (p *LinePrompts) DeleteEpic() (bool, error)  { return p.confirm(deleteEpicQuestion) }
func (p *LinePrompts) DeleteStory() (bool, error) { return p.confirm(deleteStoryQuestion) }

// FormPrompts asks questions with interactive huh forms.
type FormPrompts struct {
	accessible bool
}

// NewFormPrompts creates form based prompts. Accessible mode replaces the
// full-screen widgets with plain questions for screen readers.
func NewFormPrompts(accessible bool) *FormPrompts {
	return &FormPrompts{accessible: accessible}
}

func (p *FormPrompts) run(fields ...huh.Field) error {
	err := huh.NewForm(huh.NewGroup(fields...)).
		WithAccessible(p.accessible).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	if err != nil {
		return fmt.Errorf("failed to run form: %w", err)
	}
	return nil
}

func requireName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

func (p *FormPrompts) CreateEpic() (models.Epic, error) {
	var name, description string
	err := p.run(
		huh.NewInput().Title("Epic name").Value(&name).Validate(requireName),
		huh.NewText().Title("Epic description").Value(&description),
	)
	if err != nil {
		return models.Epic{}, err
	}
	return models.NewEpic(strings.TrimSpace(name), strings.TrimSpace(description)), nil
}

func (p *FormPrompts) CreateStory() (models.Story, error) {
	var name, description string
	err := p.run(
		huh.NewInput().Title("Story name").Value(&name).Validate(requireName),
		huh.NewText().Title("Story description").Value(&description),
	)
	if err != nil {
		return models.Story{}, err
	}
	return models.NewStory(strings.TrimSpace(name), strings.TrimSpace(description)), nil
}

func (p *FormPrompts) UpdateStatus() (models.Status, error) {
	options := make([]huh.Option[models.Status], 0, len(models.Statuses()))
	for _, s := range models.Statuses() {
		options = append(options, huh.NewOption(s.Label(), s))
	}

	status := models.Open
	if err := p.run(huh.NewSelect[models.Status]().Title("New status").Options(options...).Value(&status)); err != nil {
		return "", err
	}
	return status, nil
}

func (p *FormPrompts) confirm(question string) (bool, error) {
	var ok bool
	err := p.run(huh.NewConfirm().Title(question).Affirmative("Delete").Negative("Keep").Value(&ok))
	if errors.Is(err, ErrCancelled) {
		return false, nil
	}
	return ok, err
}

func (p *FormPrompts) DeleteEpic() (bool, error)  { return p.confirm(deleteEpicQuestion) }
func (p *FormPrompts) DeleteStory() (bool, error) { return p.confirm(deleteStoryQuestion) }
