package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
)

// Minimal TwiML response builder.
// It intentionally avoids any provider SDK dependency: this is the carrier
// boundary, and only the verbs the router emits are modeled.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr,omitempty"`
}

type twimlDial struct {
	XMLName xml.Name     `xml:"Dial"`
	Client  *twimlClient `xml:"Client,omitempty"`
}

type twimlClient struct {
	Identity string `xml:",chardata"`
}

// ConnectInstructions describes how the carrier should bridge an inbound
// PSTN call into a registered software client.
type ConnectInstructions struct {
	// Notice is spoken to the caller before bridging.
	Notice string

	// PauseSeconds separates the notice from the dial. Zero means no pause.
	PauseSeconds int

	// ClientIdentity is the registered softphone identity to dial. The call
	// is bridged into the software device, not a phone endpoint.
	ClientIdentity string
}

// RenderConnect produces the TwiML document for bridging a call to a client.
// The carrier blocks on this response; it must be valid markup.
func RenderConnect(in ConnectInstructions) (string, error) {
	if strings.TrimSpace(in.ClientIdentity) == "" {
		return "", errors.New("telephony: client identity required")
	}

	var r twimlResponse
	if in.Notice != "" {
		r.Verbs = append(r.Verbs, twimlSay{Text: in.Notice})
	}
	if in.PauseSeconds > 0 {
		r.Verbs = append(r.Verbs, twimlPause{Length: in.PauseSeconds})
	}
	r.Verbs = append(r.Verbs, twimlDial{Client: &twimlClient{Identity: in.ClientIdentity}})

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
