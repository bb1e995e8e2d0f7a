package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/roundflow"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <session-id>",
	Short: "Play the remaining rounds of a session",
	Long: `Play the remaining rounds of a session.

Each round presents a story, asks for the emotion and its intensity, offers regulation
scripts, asks for the intensity again and shows the praise. With --auto the answers are
picked automatically, which is handy for smoke tests.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("nickname", "Friend", "name used in praise")
	playCmd.Flags().Bool("auto", false, "answer every prompt automatically")
}

func runPlay(cmd *cobra.Command, args []string) error {
	sessionID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	nickname, _ := cmd.Flags().GetString("nickname")
	auto, _ := cmd.Flags().GetBool("auto")

	c := newClient()
	detail, err := c.GetSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	ss := detail.Session
	if ss.CompletedAt != nil || ss.CompletedRounds >= ss.TotalRounds {
		return errors.New("session already completed")
	}

	var ans answerer = &promptAnswerer{in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	if auto {
		ans = autoAnswerer{}
	}
	return play(cmd.Context(), c.Effects(), sessionID, ss.CompletedRounds+1, ss.TotalRounds, nickname, ans, cmd.OutOrStdout())
}

type answerer interface {
	Emotion(story model.GeneratedStory) (model.Emotion, error)
	PreIntensity() (int, error)
	PostIntensity() (int, error)
	// Script returns nil to skip regulation.
	Script(scripts []model.RegulationScript) (*uuid.UUID, error)
}

func play(ctx context.Context, fx roundflow.Effects, sessionID uuid.UUID, first, total int, nickname string, ans answerer, out io.Writer) error {
	m := roundflow.New(fx, sessionID, first, total, nickname)
	for {
		if err := playRound(ctx, m, ans, out); err != nil {
			return err
		}
		if m.IsLastRound() {
			fmt.Fprintln(out, "Session complete. Great practice!")
			return nil
		}
		if err := m.NextRound(); err != nil {
			return err
		}
	}
}

func playRound(ctx context.Context, m *roundflow.Machine, ans answerer, out io.Writer) error {
	retried := false
	for {
		rc := m.Context()
		var ev roundflow.Event

		switch m.State() {
		case roundflow.StateGreeting:
			fmt.Fprintf(out, "\n== Round %d of %d ==\n", rc.RoundNumber, rc.TotalRounds)
			ev = roundflow.Event{Type: roundflow.EventStart}

		case roundflow.StatePresentingStory:
			fmt.Fprintf(out, "%s\n\n%s\n\n", rc.Story.Title, rc.Story.Text)
			ev = roundflow.Event{Type: roundflow.EventViewed}

		case roundflow.StateLabelingEmotion:
			e, err := ans.Emotion(rc.Story)
			if err != nil {
				return err
			}
			ev = roundflow.Event{Type: roundflow.EventEmotionChosen, Emotion: e}

		case roundflow.StateRatingIntensity:
			n, err := ans.PreIntensity()
			if err != nil {
				return err
			}
			ev = roundflow.Event{Type: roundflow.EventPreIntensitySet, Intensity: n}

		case roundflow.StateOfferingRegulation:
			id, err := ans.Script(rc.Scripts)
			if err != nil {
				return err
			}
			ev = roundflow.Event{Type: roundflow.EventSkipped}
			if id != nil {
				ev = roundflow.Event{Type: roundflow.EventScriptChosen, ScriptID: id}
			}

		case roundflow.StateRunningScript:
			for _, s := range rc.Scripts {
				if s.ID != *rc.ScriptID {
					continue
				}
				for i, step := range s.Steps {
					fmt.Fprintf(out, "  %d. %s (%ds)\n", i+1, step.Instruction, step.DurationSeconds)
				}
			}
			ev = roundflow.Event{Type: roundflow.EventScriptFinished}

		case roundflow.StateReflecting:
			n, err := ans.PostIntensity()
			if err != nil {
				return err
			}
			ev = roundflow.Event{Type: roundflow.EventPostIntensitySet, Intensity: n}

		case roundflow.StatePraising:
			fmt.Fprintf(out, "\n%s\n", rc.Praise.Message)
			ev = roundflow.Event{Type: roundflow.EventAcknowledged}

		case roundflow.StateCompleted:
			return nil

		case roundflow.StateError:
			if retried {
				return fmt.Errorf("round %d failed: %w", rc.RoundNumber, rc.Err)
			}
			retried = true
			fmt.Fprintf(out, "Something went wrong (%v), trying again.\n", rc.Err)
			ev = roundflow.Event{Type: roundflow.EventRetry}

		default:
			return fmt.Errorf("unexpected state %s", m.State())
		}

		if _, err := m.Send(ctx, ev); err != nil {
			if errors.Is(err, roundflow.ErrInvalidEvent) {
				fmt.Fprintln(out, "That answer does not work here, try again.")
				continue
			}
			return err
		}
	}
}

// autoAnswerer labels correctly, calms from 4 to 2 and picks the first script.
type autoAnswerer struct{}

func (autoAnswerer) Emotion(story model.GeneratedStory) (model.Emotion, error) {
	return story.TargetEmotion, nil
}

func (autoAnswerer) PreIntensity() (int, error)  { return 4, nil }
func (autoAnswerer) PostIntensity() (int, error) { return 2, nil }

func (autoAnswerer) Script(scripts []model.RegulationScript) (*uuid.UUID, error) {
	if len(scripts) == 0 {
		return nil, nil
	}
	id := scripts[0].ID
	return &id, nil
}

type promptAnswerer struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *promptAnswerer) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt+" ")
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *promptAnswerer) Emotion(model.GeneratedStory) (model.Emotion, error) {
	names := make([]string, len(model.Emotions))
	for i, e := range model.Emotions {
		names[i] = string(e)
	}
	for {
		raw, err := p.line(fmt.Sprintf("How does the character feel? [%s]", strings.Join(names, ", ")))
		if err != nil {
			return "", err
		}
		if e, ok := model.ParseEmotion(raw); ok {
			return e, nil
		}
		fmt.Fprintf(p.out, "%q is not one of the feelings.\n", raw)
	}
}

func (p *promptAnswerer) PreIntensity() (int, error) {
	return p.intensity("How strong is that feeling right now?")
}

func (p *promptAnswerer) PostIntensity() (int, error) {
	return p.intensity("How strong is the feeling after the activity?")
}

func (p *promptAnswerer) intensity(prompt string) (int, error) {
	for {
		raw, err := p.line(fmt.Sprintf("%s [%d-%d]", prompt, model.MinIntensity, model.MaxIntensity))
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(raw); err == nil && model.ValidIntensity(n) {
			return n, nil
		}
		fmt.Fprintf(p.out, "Pick a number from %d to %d.\n", model.MinIntensity, model.MaxIntensity)
	}
}

func (p *promptAnswerer) Script(scripts []model.RegulationScript) (*uuid.UUID, error) {
	for i, s := range scripts {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, s.Name)
	}
	for {
		raw, err := p.line("Pick a calming activity, or press enter to skip:")
		if err != nil {
			return nil, err
		}
		if raw == "" {
			return nil, nil
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(scripts) {
			id := scripts[n-1].ID
			return &id, nil
		}
		fmt.Fprintln(p.out, "Pick one of the numbers above.")
	}
}
