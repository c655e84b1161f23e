package protocol

import (
	"encoding/json"
	"testing"
)

func TestRequestEncoding(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "auth",
			req:  NewAuthRequest(1, "1234"),
			want: `{"id":1,"method":"security.auth","params":{"code":"1234"}}`,
		},
		{
			name: "key retrieval carries no params",
			req:  NewKeyRequest(2),
			want: `{"id":2,"method":"security.get"}`,
		},
		{
			name: "move up",
			req:  NewMoveRequest(3, MethodMoveUp, "motor-01"),
			want: `{"id":3,"method":"move.up","params":{"targetID":"motor-01","seq":1}}`,
		},
		{
			name: "wink",
			req:  NewMoveRequest(4, MethodWink, "motor-01"),
			want: `{"id":4,"method":"move.wink","params":{"targetID":"motor-01","seq":1}}`,
		},
		{
			name: "move to position",
			req:  NewMoveToRequest(5, "motor-01", 42.5),
			want: `{"id":5,"method":"move.to","params":{"targetID":"motor-01","position":42.5,"seq":1}}`,
		},
		{
			name: "status query",
			req:  NewStatusRequest(6, MethodPosition, "motor-01"),
			want: `{"id":6,"method":"status.position","params":{"targetID":"motor-01"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.req)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMoveToPositionIsNotClamped(t *testing.T) {
	// Out-of-range values are forwarded literally; clamping them is the
	// device's decision, not the client's.
	for _, pos := range []float64{0, 100, 150, -10} {
		req := NewMoveToRequest(1, "motor-01", pos)
		params, ok := req.Params.(MoveToParams)
		if !ok {
			t.Fatalf("Params type = %T, want MoveToParams", req.Params)
		}
		if params.Position != pos {
			t.Errorf("Position = %v, want %v", params.Position, pos)
		}
	}
}

func TestKeyUnmarshal(t *testing.T) {
	t.Run("number array", func(t *testing.T) {
		var resp KeyResponse
		data := `{"result":true,"key":[0,1,2,3,4,5,6,7,8,9,10,11,12,13,14,255]}`
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if !resp.Result {
			t.Error("Result = false, want true")
		}
		if len(resp.Key) != 16 {
			t.Fatalf("key length = %d, want 16", len(resp.Key))
		}
		if resp.Key[15] != 255 {
			t.Errorf("key[15] = %d, want 255", resp.Key[15])
		}
	})

	t.Run("out of byte range", func(t *testing.T) {
		var k Key
		if err := json.Unmarshal([]byte(`[0,256]`), &k); err == nil {
			t.Error("Unmarshal() accepted element > 255")
		}
		if err := json.Unmarshal([]byte(`[-1]`), &k); err == nil {
			t.Error("Unmarshal() accepted negative element")
		}
	})

	t.Run("roundtrip", func(t *testing.T) {
		k := Key{1, 2, 3}
		data, err := json.Marshal(k)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(data) != `[1,2,3]` {
			t.Errorf("Marshal() = %s, want [1,2,3]", data)
		}
	})
}

func TestParsePosition(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		data := `{"result":true,"position":{"value":37,"direction":"down","status":"ok"}}`
		pos, err := ParsePosition([]byte(data))
		if err != nil {
			t.Fatalf("ParsePosition() error = %v", err)
		}
		if pos.Value != 37 {
			t.Errorf("Value = %v, want 37", pos.Value)
		}
		if pos.Direction != DirectionDown {
			t.Errorf("Direction = %q, want %q", pos.Direction, DirectionDown)
		}
		if pos.Status != StatusOK {
			t.Errorf("Status = %q, want %q", pos.Status, StatusOK)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		if _, err := ParsePosition([]byte(`{"result":false}`)); err != ErrRequestRejected {
			t.Errorf("ParsePosition() error = %v, want %v", err, ErrRequestRejected)
		}
	})

	t.Run("missing payload", func(t *testing.T) {
		if _, err := ParsePosition([]byte(`{"result":true}`)); err != ErrRequestRejected {
			t.Errorf("ParsePosition() error = %v, want %v", err, ErrRequestRejected)
		}
	})

	t.Run("invalid fields", func(t *testing.T) {
		tests := []struct {
			name string
			data string
		}{
			{"value above range", `{"result":true,"position":{"value":150,"direction":"up","status":"ok"}}`},
			{"value below range", `{"result":true,"position":{"value":-1,"direction":"up","status":"ok"}}`},
			{"unknown direction", `{"result":true,"position":{"value":50,"direction":"sideways","status":"ok"}}`},
			{"unknown status", `{"result":true,"position":{"value":50,"direction":"up","status":"on fire"}}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := ParsePosition([]byte(tt.data)); err == nil {
					t.Error("ParsePosition() accepted invalid snapshot")
				}
			})
		}
	})

	t.Run("not json", func(t *testing.T) {
		if _, err := ParsePosition([]byte{0xDE, 0xAD}); err == nil {
			t.Error("ParsePosition() accepted garbage")
		}
	})
}

func TestParseInfo(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		data := `{"result":true,"info":{"name":"Living Room","model":"Sonesse 30","firmware":"1.4.2","mac":"aa:bb:cc:dd:ee:ff"}}`
		info, err := ParseInfo([]byte(data))
		if err != nil {
			t.Fatalf("ParseInfo() error = %v", err)
		}
		if info.Name != "Living Room" {
			t.Errorf("Name = %q, want %q", info.Name, "Living Room")
		}
		if info.Hardware != "" {
			t.Errorf("Hardware = %q, want empty (optional field)", info.Hardware)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		if _, err := ParseInfo([]byte(`{"result":false}`)); err != ErrRequestRejected {
			t.Errorf("ParseInfo() error = %v, want %v", err, ErrRequestRejected)
		}
	})
}

func TestParseResult(t *testing.T) {
	ok, err := ParseResult([]byte(`{"result":true}`))
	if err != nil || !ok {
		t.Errorf("ParseResult() = %v, %v, want true, nil", ok, err)
	}

	ok, err = ParseResult([]byte(`{"result":false}`))
	if err != nil || ok {
		t.Errorf("ParseResult() = %v, %v, want false, nil", ok, err)
	}

	if _, err := ParseResult([]byte("garbage")); err == nil {
		t.Error("ParseResult() accepted garbage")
	}
}

func TestDirectionAndStatusValidity(t *testing.T) {
	for _, d := range []Direction{DirectionUp, DirectionDown, DirectionStopped} {
		if !d.IsValid() {
			t.Errorf("Direction %q IsValid() = false", d)
		}
	}
	if Direction("left").IsValid() {
		t.Error(`Direction "left" IsValid() = true`)
	}

	for _, s := range []MotorStatus{StatusOK, StatusObstacle, StatusThermal} {
		if !s.IsValid() {
			t.Errorf("MotorStatus %q IsValid() = false", s)
		}
	}
	if MotorStatus("").IsValid() {
		t.Error("empty MotorStatus IsValid() = true")
	}
}
