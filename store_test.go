package evkv

import "testing"

func cmdOf(verb string, rest ...string) command {
	args := make([][]byte, 0, 1+len(rest))
	args = append(args, []byte(verb))
	for _, r := range rest {
		args = append(args, []byte(r))
	}
	return command{args: args}
}

// TestStoreLaws covers spec §8 property 3 verbatim.
func TestStoreLaws(t *testing.T) {
	s := newStore()

	if resp := s.dispatch(cmdOf("set", "K", "V")); resp.status != StatusOK {
		t.Fatalf("set K V: status = %v, want OK", resp.status)
	}
	if resp := s.dispatch(cmdOf("get", "K")); resp.status != StatusOK || string(resp.payload) != "V" {
		t.Fatalf("get K: got %+v, want OK V", resp)
	}

	if resp := s.dispatch(cmdOf("del", "K")); resp.status != StatusOK {
		t.Fatalf("del K: status = %v, want OK", resp.status)
	}
	if resp := s.dispatch(cmdOf("get", "K")); resp.status != StatusNo {
		t.Fatalf("get K after del: status = %v, want NO", resp.status)
	}

	s.dispatch(cmdOf("set", "K", "V1"))
	s.dispatch(cmdOf("set", "K", "V2"))
	if resp := s.dispatch(cmdOf("get", "K")); resp.status != StatusOK || string(resp.payload) != "V2" {
		t.Fatalf("get K after overwrite: got %+v, want OK V2", resp)
	}

	if resp := s.dispatch(cmdOf("del", "absent")); resp.status != StatusOK {
		t.Fatalf("del on absent key: status = %v, want OK", resp.status)
	}
}

// TestDispatchUnknownVerbOrArity covers E3 and spec §7's "wrong name or
// arity yields ERR, connection continues" rule.
func TestDispatchUnknownVerbOrArity(t *testing.T) {
	s := newStore()

	cases := []command{
		cmdOf("ping"),
		cmdOf("get"),
		cmdOf("get", "a", "b"),
		cmdOf("set", "a"),
		cmdOf("set", "a", "b", "c", "d"),
		cmdOf("del"),
		{args: nil},
	}
	for _, c := range cases {
		if resp := s.dispatch(c); resp.status != StatusErr {
			t.Fatalf("dispatch(%+v): status = %v, want ERR", c, resp.status)
		}
	}
}

// TestIsClose covers the close-command arity/verb check the protocol
// engine uses to intercept close before dispatch ever sees it.
func TestIsClose(t *testing.T) {
	if !isClose(cmdOf("close")) {
		t.Fatalf("isClose(close) = false, want true")
	}
	if isClose(cmdOf("close", "extra")) {
		t.Fatalf("isClose(close extra) = true, want false")
	}
	if isClose(cmdOf("get", "k")) {
		t.Fatalf("isClose(get k) = true, want false")
	}
}

// TestGetMissingKeyWireStatus covers E2: get on a key never set returns NO
// with an empty payload.
func TestGetMissingKeyWireStatus(t *testing.T) {
	s := newStore()
	resp := s.dispatch(cmdOf("get", "missing"))
	if resp.status != StatusNo || len(resp.payload) != 0 {
		t.Fatalf("get missing: got %+v, want NO with empty payload", resp)
	}
}
