package protocol

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "frame message",
			msgType: TypeFrame,
			data:    FrameData{Seq: 1, Parameters: map[string]float64{"ParamAngleX": 3}},
			wantErr: false,
		},
		{
			name:    "event message",
			msgType: TypeEvent,
			data:    EventData{Motion: "nod", Label: "peak", Time: 0.5},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeState,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if msg == nil {
				t.Error("NewMessage() returned nil message")
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	original := FrameData{
		Seq:         42,
		Time:        1.25,
		Parameters:  map[string]float64{"ParamAngleX": 12.5, "ParamEyeLOpen": 0.3},
		Parts:       map[string]float64{"PartArm": 0.5},
		Opacity:     1,
		Motions:     2,
		Expressions: 1,
	}

	msg, err := NewFrameMessage(original)
	if err != nil {
		t.Fatalf("NewFrameMessage() error = %v", err)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeFrame {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeFrame)
	}

	var frame FrameData
	if err := parsed.ParseData(&frame); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if frame.Seq != original.Seq {
		t.Errorf("Seq = %v, want %v", frame.Seq, original.Seq)
	}
	if frame.Parameters["ParamAngleX"] != 12.5 {
		t.Errorf("ParamAngleX = %v, want 12.5", frame.Parameters["ParamAngleX"])
	}
	if frame.Parts["PartArm"] != 0.5 {
		t.Errorf("PartArm = %v, want 0.5", frame.Parts["PartArm"])
	}
	if frame.Motions != 2 || frame.Expressions != 1 {
		t.Errorf("entries = %v/%v, want 2/1", frame.Motions, frame.Expressions)
	}
}

func TestEventMessage(t *testing.T) {
	msg, err := NewEventMessage("nod", "peak", 0.75)
	if err != nil {
		t.Fatalf("NewEventMessage() error = %v", err)
	}
	if msg.Type != TypeEvent {
		t.Errorf("Type = %v, want %v", msg.Type, TypeEvent)
	}

	var ev EventData
	if err := msg.ParseData(&ev); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if ev.Motion != "nod" || ev.Label != "peak" || ev.Time != 0.75 {
		t.Errorf("event = %+v", ev)
	}
}

func TestStateMessage(t *testing.T) {
	msg, err := NewStateMessage(StateData{Running: true, Motion: "idle", Priority: 1, FPS: 30})
	if err != nil {
		t.Fatalf("NewStateMessage() error = %v", err)
	}

	var st StateData
	if err := msg.ParseData(&st); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if !st.Running {
		t.Error("Running should be true")
	}
	if st.Motion != "idle" {
		t.Errorf("Motion = %v, want idle", st.Motion)
	}
	if st.Expression != "" {
		t.Errorf("Expression = %v, want empty", st.Expression)
	}
}

func TestCommandMessage(t *testing.T) {
	msg, err := NewCommandMessage(ActionPlay, "nod", 2)
	if err != nil {
		t.Fatalf("NewCommandMessage() error = %v", err)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	var cmd CommandData
	if err := parsed.ParseData(&cmd); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if cmd.Action != ActionPlay || cmd.Name != "nod" || cmd.Priority != 2 {
		t.Errorf("command = %+v", cmd)
	}
}

func TestParseMessageErrors(t *testing.T) {
	if _, err := ParseMessage([]byte("{not json")); err == nil {
		t.Error("ParseMessage() should fail on malformed input")
	}

	msg := &Message{Type: TypePing}
	var v struct{}
	if err := msg.ParseData(&v); err != nil {
		t.Errorf("ParseData() on empty data error = %v", err)
	}
}
