package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atharvakonge/edustocks/internal/dashboard"
	"github.com/atharvakonge/edustocks/internal/lessons"
	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/progress"
	"github.com/atharvakonge/edustocks/internal/trainer"
)

func levelFlag(cmd *cobra.Command) (models.Level, error) {
	raw, _ := cmd.Flags().GetString("level")
	l, ok := models.ParseLevel(raw)
	if !ok {
		return "", fmt.Errorf("unknown level %q (beginner, intermediate, advanced)", raw)
	}
	return l, nil
}

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons for a level",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := levelFlag(cmd)
		if err != nil {
			return err
		}

		var entries []lessons.Entry
		load := loader(func(ctx context.Context) error {
			entries, _, err = lessons.LoadCatalog(ctx, app.backend, app.notifier, level)
			return err
		})
		return app.protected(cmd.Context(), load, func(ctx context.Context) error {
			if len(entries) == 0 {
				fmt.Println(mutedStyle.Render("No lessons at this level yet"))
				return nil
			}
			t := newTable("#", "ID", "Title", "Questions", "Status")
			for _, e := range entries {
				status := "open"
				switch {
				case e.Completed:
					status = upStyle.Render("completed")
				case e.Locked:
					status = lockedStyle.Render("locked")
				}
				t.Row(fmt.Sprint(e.Lesson.Order), e.Lesson.ID, e.Lesson.Title, fmt.Sprint(len(e.Lesson.Questions)), status)
			}
			fmt.Println(t.Render())
			return nil
		})
	},
}

func init() {
	lessonsCmd.Flags().StringP("level", "l", string(models.Beginner), "beginner, intermediate or advanced")
}

var lessonCmd = &cobra.Command{
	Use:   "lesson ID",
	Short: "Take a lesson interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := lessons.NewModel(app.backend, app.notifier, app.log)
		load := loader(func(ctx context.Context) error { return m.Load(ctx, args[0]) })
		return app.protected(cmd.Context(), load, func(ctx context.Context) error {
			return takeLesson(ctx, m, os.Stdin, os.Stdout)
		})
	},
}

// takeLesson drives m from answers read on in until the lesson is recorded
func takeLesson(ctx context.Context, m *lessons.Model, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt := func(label string) (string, bool) {
		fmt.Fprint(out, label)
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}

	st := m.State()
	fmt.Fprintln(out, titleStyle.Render(st.Lesson.Title))
	if st.ShowContent() {
		fmt.Fprintf(out, "\n%s\n\n", st.Lesson.Content)
	}

	for {
		st = m.State()
		switch st.Phase {
		case lessons.Completed:
			return nil

		case lessons.ReadyToComplete:
			if _, ok := prompt("Press enter to complete the lesson "); !ok {
				return io.ErrUnexpectedEOF
			}
			if err := m.Complete(ctx); err != nil {
				if _, ok := prompt("Press enter to retry "); !ok {
					return err
				}
			}

		case lessons.Unanswered:
			q := st.Question()
			fmt.Fprintf(out, "Question %d of %d\n%s\n%s", st.Index+1, st.Total, q.Question, optionsView(q.Options))
			line, ok := prompt("Answer: ")
			if !ok {
				return io.ErrUnexpectedEOF
			}
			i, valid := parseOption(line, len(q.Options))
			if !valid || !m.Select(i) {
				fmt.Fprintln(out, mutedStyle.Render("Pick one of the listed options"))
				continue
			}
			m.Submit()
			if exp := q.Explanation; exp != "" {
				fmt.Fprintln(out, mutedStyle.Render(exp))
			}

		case lessons.Answered:
			label := "Next question (enter) "
			if st.Index == st.Total-1 {
				label = "Complete lesson (enter) "
			}
			if _, ok := prompt(label); !ok {
				return io.ErrUnexpectedEOF
			}
			// a failed completion is already reported; the next pass retries it
			_ = m.Next(ctx)

		default:
			return lessons.ErrNotLoaded
		}
	}
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show rank, XP and achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		var prof progress.Profile
		load := loader(func(ctx context.Context) error {
			email := ""
			if u := app.session.Snapshot().User; u != nil {
				email = u.Email
			}
			prof = progress.LoadProfile(ctx, app.backend, email, app.log)
			return nil
		})
		return app.protected(cmd.Context(), load, func(ctx context.Context) error {
			fmt.Println(titleStyle.Render(prof.Email))
			level := string(prof.Level)
			if level == "" {
				level = "-"
			}
			t := newTable("", "")
			t.Row("Rank", prof.Rank)
			t.Row("Level", level)
			t.Row("XP", fmt.Sprint(prof.XP))
			t.Row("Level progress", fmt.Sprintf("%.1f%%", prof.LevelProgress))
			t.Row("XP to next milestone", fmt.Sprint(prof.XPToNext))
			t.Row("Lessons completed", fmt.Sprint(prof.CompletedLessons))
			t.Row("Cash", money(prof.Balance))
			t.Row("Holdings value", money(prof.HoldingsValue))
			t.Row("Total value", money(prof.TotalValue))
			t.Row("Positions", fmt.Sprint(prof.Positions))
			fmt.Println(t.Render())

			fmt.Println(titleStyle.Render("Achievements"))
			for _, a := range prof.Achievements {
				fmt.Printf("  %s  %s\n", a.Name, mutedStyle.Render(a.Description))
			}
			return nil
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Overview of portfolio, learning and top stocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		var ov dashboard.Overview
		load := loader(func(ctx context.Context) error {
			ov = dashboard.Load(ctx, app.backend, app.log)
			return nil
		})
		return app.protected(cmd.Context(), load, func(ctx context.Context) error {
			t := newTable("Portfolio value", "Cash", "XP", "Rank", "Level progress", "Lessons")
			t.Row(money(ov.PortfolioValue()), money(ov.Cash()), fmt.Sprint(ov.XP()), ov.Rank(),
				fmt.Sprintf("%.1f%%", ov.LevelProgress()), fmt.Sprint(ov.CompletedLessons()))
			fmt.Println(t.Render())
			if len(ov.Stocks) > 0 {
				fmt.Println(titleStyle.Render("Top stocks"))
				fmt.Println(stocksTable(ov.Stocks))
			}
			return nil
		})
	},
}

var trainerCmd = &cobra.Command{
	Use:   "trainer",
	Short: "Practise with the AI trainer",
}

var trainerQuestionCmd = &cobra.Command{
	Use:   "question",
	Short: "Answer generated practice questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		m := trainer.NewModel(app.backend, app.notifier, app.log)
		load := loader(func(ctx context.Context) error {
			m.Init(ctx)
			if cmd.Flags().Changed("level") {
				level, err := levelFlag(cmd)
				if err != nil {
					return err
				}
				m.SetLevel(level)
			}
			return nil
		})
		return app.protected(cmd.Context(), load, func(ctx context.Context) error {
			return practise(ctx, m, topic, os.Stdin, os.Stdout)
		})
	},
}

// practise loops over generated questions until the user declines another
func practise(ctx context.Context, m *trainer.Model, topic string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		level := m.State().Level
		if err := m.FetchQuestion(ctx, level, topic); err != nil {
			return err
		}
		st := m.State()
		fmt.Fprintf(out, "%s %s\n%s\n%s", titleStyle.Render("["+string(level)+"]"), st.Question.Topic,
			st.Question.Question, optionsView(st.Question.Options))

		for {
			fmt.Fprint(out, "Answer: ")
			if !scanner.Scan() {
				return nil
			}
			i, ok := parseOption(scanner.Text(), len(st.Question.Options))
			if ok && m.Select(i) {
				break
			}
			fmt.Fprintln(out, mutedStyle.Render("Pick one of the listed options"))
		}
		if _, err := m.SubmitAnswer(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, mutedStyle.Render(m.State().Explanation()))

		fmt.Fprint(out, "Another? [Y/n] ")
		if !scanner.Scan() || strings.HasPrefix(strings.ToLower(strings.TrimSpace(scanner.Text())), "n") {
			return nil
		}
	}
}

var trainerAskCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Ask the trainer a freeform question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := trainer.NewModel(app.backend, app.notifier, app.log)
		load := loader(func(ctx context.Context) error {
			m.Init(ctx)
			if cmd.Flags().Changed("level") {
				level, err := levelFlag(cmd)
				if err != nil {
					return err
				}
				m.SetLevel(level)
			}
			return nil
		})
		return app.protected(cmd.Context(), load, func(ctx context.Context) error {
			m.SetQuery(strings.Join(args, " "))
			resp, err := m.Ask(ctx)
			if err != nil {
				return err
			}
			fmt.Println(resp)
			return nil
		})
	},
}

func init() {
	trainerCmd.PersistentFlags().StringP("level", "l", string(models.Beginner), "difficulty (defaults to your stored level)")
	trainerQuestionCmd.Flags().String("topic", "", "optional topic for generated questions")
	trainerCmd.AddCommand(trainerQuestionCmd, trainerAskCmd)
}
