// Command vinto runs an interactive terminal game of Vinto against bots.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto-engine/internal/bot"
	"github.com/Lonli-Lokli/vinto-engine/internal/card"
	"github.com/Lonli-Lokli/vinto-engine/internal/config"
	"github.com/Lonli-Lokli/vinto-engine/internal/game"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	r := &runner{
		in:  bufio.NewScanner(os.Stdin),
		cfg: cfg,
	}
	if err := r.play(logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runner struct {
	in      *bufio.Scanner
	cfg     config.Config
	g       *game.Game
	humanID uuid.UUID
}

func (r *runner) play(logger *logrus.Logger) error {
	r.g = game.New(logger)
	r.g.SetRules(game.Rules{
		CardsPerPlayer:   r.cfg.CardsPerPlayer,
		SetupPeekCount:   r.cfg.SetupPeekCount,
		PenaltyDrawCount: r.cfg.PenaltyDrawCount,
		BotThinkDelay:    r.cfg.BotThinkDelay,
	})

	r.humanID = uuid.New()
	specs := []game.PlayerSpec{{ID: r.humanID, Name: r.cfg.PlayerName, IsBot: false}}
	for i := 0; i < r.cfg.BotCount; i++ {
		specs = append(specs, game.PlayerSpec{
			ID:    uuid.New(),
			Name:  fmt.Sprintf("Bot %d", i+1),
			IsBot: true,
		})
	}

	seed := r.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if err := r.g.Initialize(seed, specs); err != nil {
		return err
	}
	for _, spec := range specs[1:] {
		r.g.RegisterDecider(spec.ID, bot.NewBaseline())
	}

	if err := r.setupPhase(); err != nil {
		return err
	}

	for r.g.Phase() == game.PhasePlaying {
		turn := r.g.TurnPlayer()
		if turn == nil {
			break
		}
		if turn.IsBot {
			done, err := r.g.PlayBotTurn(turn.ID)
			if err != nil {
				return err
			}
			if !done {
				if err := r.resolveHumanPending(); err != nil {
					return err
				}
			}
			continue
		}
		if err := r.humanTurn(); err != nil {
			return err
		}
	}

	r.printResult()
	return nil
}

// setupPhase runs the opening peeks. Bots peek their first slots; the human
// picks.
func (r *runner) setupPhase() error {
	for _, p := range r.g.Players() {
		if !p.IsBot {
			continue
		}
		positions := make([]int, 0, r.cfg.SetupPeekCount)
		for i := 0; i < r.cfg.SetupPeekCount && i < p.HandSize(); i++ {
			positions = append(positions, i)
		}
		if err := r.g.Do(&game.SetupPeekCommand{PlayerID: p.ID, Positions: positions}); err != nil {
			return err
		}
	}

	fmt.Printf("Peek %d of your cards before play begins.\n", r.cfg.SetupPeekCount)
	positions := r.promptPositions(r.cfg.SetupPeekCount)
	if err := r.g.Do(&game.SetupPeekCommand{PlayerID: r.humanID, Positions: positions}); err != nil {
		fmt.Println(err)
	}
	r.printTable()
	r.prompt("Press enter to start")
	return r.g.Do(&game.FinishSetupCommand{})
}

func (r *runner) humanTurn() error {
	r.printTable()
	choice := r.prompt("Your turn: (d)raw, (t)ake discard, call (v)into")
	var cmd game.Command
	switch choice {
	case "t":
		cmd = &game.TakeDiscardCommand{PlayerID: r.humanID}
	case "v":
		cmd = &game.CallVintoCommand{PlayerID: r.humanID}
	default:
		cmd = &game.DrawCardCommand{PlayerID: r.humanID}
	}
	if err := r.g.Do(cmd); err != nil {
		if game.IsRejection(err) {
			fmt.Println(err)
			return nil
		}
		return err
	}
	if choice == "v" {
		return nil
	}

	drawn, _ := r.g.Drawn()
	fmt.Printf("You hold: %s\n", drawn)
	if err := r.placeDrawn(drawn); err != nil {
		return err
	}
	return r.finishHumanTurn()
}

func (r *runner) placeDrawn(drawn card.Card) error {
	for {
		choice := r.prompt("(s)wap into row, (p)lay action, (d)iscard")
		switch choice {
		case "p":
			if err := r.do(&game.PlayDrawnActionCommand{PlayerID: r.humanID}); err != nil {
				return err
			}
			if _, held := r.g.Drawn(); held {
				continue
			}
			return r.resolveHumanPendingOnly()
		case "d":
			if err := r.do(&game.DiscardDrawnCommand{PlayerID: r.humanID}); err != nil {
				return err
			}
			if _, held := r.g.Drawn(); held {
				continue
			}
			return nil
		case "s":
			pos := r.promptInt("Position to replace")
			if err := r.do(&game.SelectSwapPositionCommand{PlayerID: r.humanID, Position: pos}); err != nil {
				return err
			}
			if _, held := r.g.Drawn(); !held {
				return nil
			}
			var declared *card.Rank
			if ans := r.prompt("Declare the replaced card's rank? (rank or enter to skip)"); ans != "" {
				if rk, ok := card.ParseRank(ans); ok {
					declared = &rk
				}
			}
			if err := r.do(&game.SwapCardCommand{PlayerID: r.humanID, DeclaredRank: declared}); err != nil {
				return err
			}
			if _, held := r.g.Drawn(); held {
				continue
			}
			if r.g.Pending() != nil {
				fmt.Println("Correct! The replaced card's action is yours.")
				return r.resolveHumanPendingOnly()
			}
			return nil
		}
	}
}

// finishHumanTurn gives the human a toss-in chance, then runs the shared
// end-of-turn sequence.
func (r *runner) finishHumanTurn() error {
	r.g.EvaluateBotTosses()
	if w := r.g.TossWindow(); w != nil && w.Open {
		r.printTable()
		for {
			ans := r.prompt(fmt.Sprintf("Toss in a %s? (position or enter to pass)", w.Rank))
			if ans == "" {
				break
			}
			pos, err := strconv.Atoi(ans)
			if err != nil {
				continue
			}
			if err := r.do(&game.TossInCommand{PlayerID: r.humanID, Position: pos}); err != nil {
				return err
			}
		}
	}
	done, err := r.g.FinishTurn()
	if err != nil {
		return err
	}
	if !done {
		return r.resolveHumanPending()
	}
	return nil
}

// resolveHumanPending collects targets for the human's queued toss-in
// action, then resumes the queue drain.
func (r *runner) resolveHumanPending() error {
	if err := r.resolveHumanPendingOnly(); err != nil {
		return err
	}
	done, err := r.g.ResumeTossQueue()
	if err != nil {
		return err
	}
	if !done {
		return r.resolveHumanPending()
	}
	return nil
}

func (r *runner) resolveHumanPendingOnly() error {
	for {
		p := r.g.Pending()
		if p == nil || p.ActorID != r.humanID {
			return nil
		}
		fmt.Printf("Resolving %s (%s)\n", p.Card, p.Target)
		var cmd game.Command
		switch {
		case p.AwaitingSwapChoice:
			swap := r.prompt("Swap the two peeked cards? (y/n)") == "y"
			cmd = &game.ConfirmQueenSwapCommand{PlayerID: r.humanID, Swap: swap}
		case p.Target == game.TargetDeclareAction:
			ans := r.prompt("Declare a rank for the king (or enter to skip)")
			if ans == "" {
				cmd = &game.SkipActionCommand{PlayerID: r.humanID}
				break
			}
			rk, ok := card.ParseRank(ans)
			if !ok {
				continue
			}
			cmd = &game.DeclareKingRankCommand{PlayerID: r.humanID, Rank: rk}
		default:
			ans := r.prompt("Target as player,position (or enter to skip)")
			if ans == "" {
				cmd = &game.SkipActionCommand{PlayerID: r.humanID}
				break
			}
			ref, ok := r.parseTarget(ans)
			if !ok {
				continue
			}
			cmd = &game.SelectActionTargetCommand{PlayerID: r.humanID, Target: ref}
		}
		if err := r.do(cmd); err != nil {
			return err
		}
	}
}

// parseTarget reads "seat,position" against the current seating order.
func (r *runner) parseTarget(s string) (game.TargetRef, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return game.TargetRef{}, false
	}
	seat, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	pos, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	players := r.g.Players()
	if err1 != nil || err2 != nil || seat < 0 || seat >= len(players) {
		return game.TargetRef{}, false
	}
	return game.TargetRef{PlayerID: players[seat].ID, Position: pos}, true
}

// do runs a command, printing rejections instead of failing the session.
func (r *runner) do(cmd game.Command) error {
	err := r.g.Do(cmd)
	if game.IsRejection(err) {
		fmt.Println(err)
		return nil
	}
	return err
}

func (r *runner) printTable() {
	view := r.g.StateFor(r.humanID)
	fmt.Println()
	fmt.Printf("Draw pile: %d   Discard: %d", view.DrawPileSize, view.DiscardPileSize)
	if view.DiscardTop != nil {
		fmt.Printf(" (top: %s)", view.DiscardTop.Rank)
	}
	fmt.Println()
	for seat, p := range view.Players {
		marker := " "
		if p.IsCurrentTurn {
			marker = "*"
		}
		row := make([]string, len(p.Cards))
		for i, c := range p.Cards {
			if c.Known {
				row[i] = string(c.Rank)
			} else {
				row[i] = "?"
			}
		}
		fmt.Printf("%s [%d] %-8s %s\n", marker, seat, p.Name, strings.Join(row, " "))
	}
}

func (r *runner) printResult() {
	res := r.g.Result()
	if res == nil {
		return
	}
	fmt.Println("\n--- Round over ---")
	for _, p := range r.g.Players() {
		hand := make([]string, 0, p.HandSize())
		for _, c := range p.Cards {
			hand = append(hand, c.String())
		}
		tag := ""
		if p.ID == res.CallerID {
			tag = " (caller)"
		}
		fmt.Printf("%-8s%s %v = %d points\n", p.Name, tag, hand, res.Scores[p.ID])
	}
	for _, p := range r.g.Players() {
		for _, w := range res.WinnerIDs {
			if p.ID == w {
				fmt.Printf("Winner: %s\n", p.Name)
			}
		}
	}
}

func (r *runner) prompt(msg string) string {
	fmt.Printf("%s > ", msg)
	if !r.in.Scan() {
		return ""
	}
	return strings.TrimSpace(strings.ToLower(r.in.Text()))
}

func (r *runner) promptInt(msg string) int {
	for {
		n, err := strconv.Atoi(r.prompt(msg))
		if err == nil {
			return n
		}
	}
}

func (r *runner) promptPositions(count int) []int {
	for {
		ans := r.prompt(fmt.Sprintf("Positions, comma separated (%d)", count))
		parts := strings.Split(ans, ",")
		if len(parts) != count {
			continue
		}
		out := make([]int, 0, count)
		for _, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				break
			}
			out = append(out, n)
		}
		if len(out) == count {
			return out
		}
	}
}
