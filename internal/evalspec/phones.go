package evalspec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// Phone is one configured device and the role written for it
type Phone struct {
	Label string `json:"label"`
	Role  string `json:"role"`
}

// PhoneGroup is the phones of one OS family in configured order
type PhoneGroup struct {
	OS     string  `json:"os"`
	Phones []Phone `json:"phones"`
}

// Phones is the "phones" object of a spec. Its keys keep their document
// order, since the position of a phone decides its role during linking.
type Phones []PhoneGroup

// UnmarshalJSON decodes {"android": {"label": "role", ...}, "ios": {...}}.
func (p *Phones) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var groups Phones
	err := readObject(dec, func(os string) error {
		group := PhoneGroup{OS: os}
		err := readObject(dec, func(label string) error {
			var role string
			if err := dec.Decode(&role); err != nil {
				return fmt.Errorf("failed to decode role of %s: %w", label, err)
			}
			group.Phones = append(group.Phones, Phone{Label: label, Role: role})
			return nil
		})
		if err != nil {
			return err
		}
		groups = append(groups, group)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to decode phones: %w", err)
	}
	*p = groups
	return nil
}

// MarshalJSON writes the phones back in order.
func (p Phones) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, g.OS)
		buf.WriteByte('{')
		for j, ph := range g.Phones {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeKey(&buf, ph.Label)
			role, err := json.Marshal(ph.Role)
			if err != nil {
				return nil, err
			}
			buf.Write(role)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Families builds the device families of an experiment from the phones.
func (p Phones) Families() ([]*models.PhoneFamily, error) {
	families := make([]*models.PhoneFamily, 0, len(p))
	for _, g := range p {
		f := &models.PhoneFamily{OS: g.OS}
		for _, ph := range g.Phones {
			kind, ok := models.ParseRoleKind(ph.Role)
			if !ok {
				return nil, fmt.Errorf("%w: phone %s has unknown role %q", ErrInvalidSpec, ph.Label, ph.Role)
			}
			f.Devices = append(f.Devices, &models.Device{
				Label:          ph.Label,
				OS:             g.OS,
				ConfiguredRole: kind,
				RoleName:       ph.Role,
			})
		}
		families = append(families, f)
	}
	return families, nil
}

// readObject walks one JSON object, calling fn with each key while the
// decoder is positioned on the matching value.
func readObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func writeKey(buf *bytes.Buffer, key string) {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteByte(':')
}
