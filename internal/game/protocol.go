package game

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Server frame types.
const (
	FrameMission           = "mission"
	FrameDialogue          = "dialogue"
	FrameDialogueEnd       = "dialogue_end"
	FrameAwakenedListeners = "awakened_listeners"
	FrameError             = "error"
)

func encodeFrame(typ string, fields func(e *jx.Encoder)) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("type")
	e.Str(typ)
	if fields != nil {
		fields(&e)
	}
	e.ObjEnd()

	return e.Bytes()
}

func missionFrame(awakened, initial int) []byte {
	return encodeFrame(FrameMission, func(e *jx.Encoder) {
		e.FieldStart("awakened_listeners")
		e.Int(awakened)
		e.FieldStart("initial_listeners")
		e.Int(initial)
	})
}

func dialogueFrame(speaker, line string) []byte {
	return encodeFrame(FrameDialogue, func(e *jx.Encoder) {
		e.FieldStart("speaker")
		e.Str(speaker)
		e.FieldStart("line")
		e.Str(line)
	})
}

func dialogueEndFrame() []byte {
	return encodeFrame(FrameDialogueEnd, nil)
}

func awakenedFrame(awakened int) []byte {
	return encodeFrame(FrameAwakenedListeners, func(e *jx.Encoder) {
		e.FieldStart("awakened_listeners")
		e.Int(awakened)
	})
}

func errorFrame(msg string) []byte {
	return encodeFrame(FrameError, func(e *jx.Encoder) {
		e.FieldStart("message")
		e.Str(msg)
	})
}

// clientMessage is a text frame sent by the player.
type clientMessage struct {
	// UserDialogue is typed text, recorded as said by the infiltrator.
	UserDialogue string
	// SpeechEnd ends the live transcription started by binary frames.
	SpeechEnd bool
}

func decodeClientMessage(data []byte) (clientMessage, error) {
	var msg clientMessage
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "user_dialogue":
			if d.Next() == jx.Null {
				return d.Null()
			}
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode field \"user_dialogue\"")
			}
			msg.UserDialogue = s
		case "speech_end":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Bool()
			if err != nil {
				return errors.Wrap(err, "decode field \"speech_end\"")
			}
			msg.SpeechEnd = v
		default:
			return d.Skip()
		}

		return nil
	})
	if err != nil {
		return clientMessage{}, errors.Wrap(err, "could not decode client message")
	}

	return msg, nil
}
