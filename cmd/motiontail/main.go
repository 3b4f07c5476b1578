// motiontail connects to a motionview server and prints the frames and
// events it streams.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-motion/internal/httpc"
	"github.com/teslashibe/go-motion/pkg/library"
	"github.com/teslashibe/go-motion/pkg/motion"
	"github.com/teslashibe/go-motion/pkg/protocol"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws/frames", "Frame stream URL")
	api := flag.String("api", "http://localhost:8080/api", "REST API base URL")
	list := flag.Bool("list", false, "List motions and expressions, then exit")
	play := flag.String("play", "", "Motion to play after connecting")
	priority := flag.Int("priority", int(motion.PriorityNormal), "Priority for -play")
	expression := flag.String("expression", "", "Expression to set after connecting")
	every := flag.Int("every", 10, "Print every Nth frame (0 prints none)")
	params := flag.String("params", "", "Comma-separated parameters to print (default all)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *list {
		if err := printLibrary(ctx, *api); err != nil {
			log.Fatalf("❌ List failed: %v", err)
		}
		return
	}

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, *url, nil)
	if err != nil {
		log.Fatalf("❌ Connect failed: %v", err)
	}
	defer conn.Close()
	fmt.Printf("🔌 Connected to %s\n", *url)

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	if *expression != "" {
		send(conn, protocol.ActionExpression, *expression, 0)
	}
	if *play != "" {
		send(conn, protocol.ActionPlay, *play, *priority)
	}

	filter := splitList(*params)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("⚠️  Stream ended: %v", err)
			}
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Printf("⚠️  Bad message: %v", err)
			continue
		}
		printMessage(msg, *every, filter)
	}
}

func printLibrary(ctx context.Context, api string) error {
	var motions []library.MotionInfo
	if err := httpc.GetJSON(ctx, api+"/motions", &motions); err != nil {
		return err
	}
	var expressions []library.ExpressionInfo
	if err := httpc.GetJSON(ctx, api+"/expressions", &expressions); err != nil {
		return err
	}

	fmt.Println("Motions:")
	for _, m := range motions {
		loop := ""
		if m.Loop {
			loop = " (loop)"
		}
		fmt.Printf("  %-20s %-12s %5.2fs %d events%s\n", m.Name, m.Group, m.Duration, m.Events, loop)
	}
	fmt.Println("Expressions:")
	for _, e := range expressions {
		fmt.Printf("  %-20s %d parameters\n", e.Name, e.Parameters)
	}
	return nil
}

func send(conn *websocket.Conn, action, name string, priority int) {
	msg, err := protocol.NewCommandMessage(action, name, priority)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	data, err := msg.Bytes()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Fatalf("❌ Send failed: %v", err)
	}
}

func printMessage(msg *protocol.Message, every int, filter []string) {
	switch msg.Type {
	case protocol.TypeFrame:
		var f protocol.FrameData
		if err := msg.ParseData(&f); err != nil || every <= 0 || f.Seq%uint64(every) != 0 {
			return
		}
		fmt.Printf("#%-6d t=%7.3f m=%d e=%d %s\n", f.Seq, f.Time, f.Motions, f.Expressions, formatParams(f.Parameters, filter))
	case protocol.TypeEvent:
		var e protocol.EventData
		if err := msg.ParseData(&e); err == nil {
			fmt.Printf("⚡ %s: %q at %.3fs\n", e.Motion, e.Label, e.Time)
		}
	case protocol.TypeState:
		var s protocol.StateData
		if err := msg.ParseData(&s); err == nil {
			fmt.Printf("🎬 motion=%q expression=%q priority=%d fps=%.0f\n", s.Motion, s.Expression, s.Priority, s.FPS)
		}
	case protocol.TypeError:
		var e protocol.ErrorData
		if err := msg.ParseData(&e); err == nil {
			fmt.Printf("❌ %s\n", e.Message)
		}
	}
}

func formatParams(values map[string]float64, filter []string) string {
	ids := filter
	if len(ids) == 0 {
		ids = make([]string, 0, len(values))
		for id := range values {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	var b strings.Builder
	for _, id := range ids {
		v, ok := values[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s=%.3f ", strings.TrimPrefix(id, "Param"), v)
	}
	return strings.TrimSpace(b.String())
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
