package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/wordrace/network"
)

const usage = `commands:
  name [NAME]                       create_player, optionally with a display name
  create [ROUNDS [SECONDS [CAT,...]]] create_room
  join CODE                         join_room
  leave                             leave_room
  ready                             toggle_ready
  start                             start_game
  letter                            select_letter
  round                             start_round
  answer CATEGORY TEXT...           submit_answer
  done                              finish_answers
  review PLAYER CATEGORY VALID UNIQUE   review_answer (true|false|-)
  next                              ready_for_next_round
  scores [CODE]                     get_scores
  quit`

// parseCommand turns an input line into a message id and JSON payload.
func parseCommand(line string) (uint16, any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("empty command")
	}
	args := fields[1:]
	switch fields[0] {
	case "name":
		return network.MsgTypeCreatePlayer, map[string]string{"name": strings.Join(args, " ")}, nil
	case "create":
		payload := map[string]any{}
		if len(args) > 0 {
			rounds, err := strconv.Atoi(args[0])
			if err != nil {
				return 0, nil, fmt.Errorf("rounds: %w", err)
			}
			payload["rounds"] = rounds
		}
		if len(args) > 1 {
			seconds, err := strconv.Atoi(args[1])
			if err != nil {
				return 0, nil, fmt.Errorf("time limit: %w", err)
			}
			payload["timeLimit"] = seconds
		}
		if len(args) > 2 {
			payload["categories"] = strings.Split(strings.Join(args[2:], " "), ",")
		}
		return network.MsgTypeCreateRoom, payload, nil
	case "join":
		if len(args) != 1 {
			return 0, nil, fmt.Errorf("usage: join CODE")
		}
		return network.MsgTypeJoinRoom, map[string]string{"roomCode": args[0]}, nil
	case "leave":
		return network.MsgTypeLeaveRoom, nil, nil
	case "ready":
		return network.MsgTypeToggleReady, nil, nil
	case "start":
		return network.MsgTypeStartGame, nil, nil
	case "letter":
		return network.MsgTypeSelectLetter, nil, nil
	case "round":
		return network.MsgTypeStartRound, nil, nil
	case "answer":
		if len(args) < 1 {
			return 0, nil, fmt.Errorf("usage: answer CATEGORY TEXT")
		}
		return network.MsgTypeSubmitAnswer, map[string]string{
			"category": args[0],
			"answer":   strings.Join(args[1:], " "),
		}, nil
	case "done":
		return network.MsgTypeFinishAnswers, nil, nil
	case "review":
		if len(args) != 4 {
			return 0, nil, fmt.Errorf("usage: review PLAYER CATEGORY VALID UNIQUE")
		}
		valid, err := parseFlag(args[2])
		if err != nil {
			return 0, nil, err
		}
		unique, err := parseFlag(args[3])
		if err != nil {
			return 0, nil, err
		}
		return network.MsgTypeReviewAnswer, map[string]any{
			"reviewedPlayerId": args[0],
			"category":         args[1],
			"isValid":          valid,
			"isUnique":         unique,
		}, nil
	case "next":
		return network.MsgTypeReadyForNextRound, nil, nil
	case "scores":
		payload := map[string]string{}
		if len(args) > 0 {
			payload["roomCode"] = args[0]
		}
		return network.MsgTypeGetScores, payload, nil
	}
	return 0, nil, fmt.Errorf("unknown command %q", fields[0])
}

// parseFlag maps "-" to an unset review flag.
func parseFlag(s string) (*bool, error) {
	if s == "-" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("review flag %q: want true, false or -", s)
	}
	return &b, nil
}

func main() {
	host := flag.String("host", "localhost:8080", "game server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	conn := network.NewWSConnection(c)
	defer conn.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			packet, err := conn.ReadPacket()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			event, ok := network.EventName(packet.MsgID)
			if !ok {
				event = strconv.Itoa(int(packet.MsgID))
			}
			log.Printf("<- %s: %s", event, packet.Data)
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println(usage)
	heartbeat := time.NewTicker(10 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-heartbeat.C:
			if err := conn.Send(network.MsgTypeHeartbeat, nil); err != nil {
				log.Println("Heartbeat failed:", err)
				return
			}
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "quit" {
				return
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			msgID, payload, err := parseCommand(line)
			if err != nil {
				log.Println(err)
				continue
			}
			var data []byte
			if payload != nil {
				if data, err = json.Marshal(payload); err != nil {
					log.Println("Encode failed:", err)
					continue
				}
			}
			if err := conn.Send(msgID, data); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
