// Command combat-demo plays one combat run locally with a naive strategy and
// prints the event stream. Useful for eyeballing balance changes without a
// client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/gambition/combat-server-go/internal/game"
	"github.com/gambition/combat-server-go/internal/run"
)

var (
	seed       = flag.Int64("seed", 1, "run seed")
	stages     = flag.Int("stages", 3, "encounters per run")
	companions = flag.String("companions", "", "comma-separated companion keys")
	maxTurns   = flag.Int("max-turns", 200, "safety cap on total turns")
)

func main() {
	flag.Parse()

	var keys []string
	if *companions != "" {
		keys = strings.Split(*companions, ",")
	}

	mgr := run.NewManager(run.Config{Stages: *stages}, nil, nil, nil)
	r, err := mgr.StartRun(context.Background(), "Demo", keys, nil, *seed)
	if err != nil {
		log.Fatalf("start run: %v", err)
	}

	cursor := 0
	for turns := 0; turns < *maxTurns; turns++ {
		sess := r.Session()
		fmt.Printf("\n-- %s vs %s (%d/%d HP) --\n",
			sess.Player().Name, sess.Enemy().Name, sess.Enemy().HP, sess.Enemy().MaxHP)

		// Naive strategy: always play the first five cards.
		if _, err := sess.SubmitPlayerAction([]int{0, 1, 2, 3, 4}); err != nil {
			log.Fatalf("play: %v", err)
		}
		cursor = printEvents(sess, cursor)
		if done, fresh := advanceRun(mgr, r, &cursor); done {
			return
		} else if fresh {
			continue
		}

		if _, err := sess.AdvanceEnemyTurn(); err != nil {
			log.Fatalf("enemy turn: %v", err)
		}
		cursor = printEvents(sess, cursor)
		if done, _ := advanceRun(mgr, r, &cursor); done {
			return
		}
	}
	log.Fatalf("run did not finish within %d turns", *maxTurns)
}

// advanceRun rolls the run forward when the current session ended. done
// reports a finished run; fresh reports a new encounter.
func advanceRun(mgr *run.Manager, r *run.Run, cursor *int) (done, fresh bool) {
	sess := r.Session()
	if sess.Outcome() == game.OutcomeNone {
		return false, false
	}

	nextSess, err := mgr.CompleteEncounter(context.Background(), r)
	if err != nil {
		log.Fatalf("complete encounter: %v", err)
	}
	if nextSess == nil {
		snap := r.Snapshot()
		fmt.Printf("\n== run %s: %d/%d encounters ==\n", snap.State, snap.Completed, snap.Stages)
		return true, false
	}
	*cursor = 0
	return false, true
}

func printEvents(sess *game.Session, cursor int) int {
	events, next := sess.EventsSince(cursor)
	for _, ev := range events {
		line := fmt.Sprintf("[T%d] %s", ev.Turn, ev.Type)
		if ev.Actor != "" {
			line += " actor=" + ev.Actor
		}
		if ev.Target != "" {
			line += " target=" + ev.Target
		}
		if ev.Amount != 0 {
			line += fmt.Sprintf(" amount=%d", ev.Amount)
		}
		if ev.Detail != "" {
			line += " detail=" + ev.Detail
		}
		fmt.Println(line)
	}
	return next
}
