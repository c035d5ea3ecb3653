package session

import (
	"encoding/json"
	"errors"
)

func marshalSession(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}
	return data, nil
}

func unmarshalSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}
	if s.ID == "" || s.Token == "" {
		return nil, errors.Join(ErrSerialization, errors.New("session payload has no id or token"))
	}
	if s.Values == nil {
		s.Values = make(map[string]json.RawMessage)
	}
	return &s, nil
}
