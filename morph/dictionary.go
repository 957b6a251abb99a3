package morph

import "fmt"

// Dictionary bundles the resolved lexicons, connector, character
// property table, and unknown-word handler a Worker needs. Every
// component that could be built from a given text source is present
// and mutually consistent (id ranges agree) before any Worker ever
// tokenizes against it; partially-built dictionaries are rejected at
// construction time rather than surfacing as a runtime panic later.
type Dictionary struct {
	SystemLex *Lexicon
	UserLex   *Lexicon // nil if no user dictionary was loaded
	Conn      *Connector
	CharProp  *CharProperty
	Unk       *UnkHandler
	Mapper    *ConnIdMapper // nil until DoMapping is called

	spaceBit    uint32
	hasSpaceBit bool
}

// NewDictionary assembles and validates a Dictionary from its
// components. userLex may be nil.
func NewDictionary(systemLex *Lexicon, userLex *Lexicon, conn *Connector, charProp *CharProperty, unk *UnkHandler) (*Dictionary, error) {
	d := &Dictionary{SystemLex: systemLex, UserLex: userLex, Conn: conn, CharProp: charProp, Unk: unk}
	if bit, ok := charProp.CategoryBit("SPACE"); ok {
		d.spaceBit, d.hasSpaceBit = bit, true
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// isSpace reports whether ci belongs to the SPACE category, used by
// Worker.Tokenize's ignore-space mode. A dictionary whose char.def
// never declares a SPACE category treats every character as non-space.
func (d *Dictionary) isSpace(ci CharInfo) bool {
	return d.hasSpaceBit && ci.CateIDSet&d.spaceBit != 0
}

// SetUserLexicon attaches or replaces the user lexicon and
// re-validates its ids against the connector.
func (d *Dictionary) SetUserLexicon(userLex *Lexicon) error {
	prev := d.UserLex
	d.UserLex = userLex
	if err := d.validate(); err != nil {
		d.UserLex = prev
		return err
	}
	return nil
}

// validate checks that every left/right id any component uses is
// within the connector's declared dimensions.
func (d *Dictionary) validate() error {
	check := func(name string, maxLeft, maxRight int) error {
		if maxLeft >= d.Conn.NumLeft() {
			return &ArgumentError{Msg: fmt.Sprintf("%s: left id %d exceeds connector dimension %d", name, maxLeft, d.Conn.NumLeft())}
		}
		if maxRight >= d.Conn.NumRight() {
			return &ArgumentError{Msg: fmt.Sprintf("%s: right id %d exceeds connector dimension %d", name, maxRight, d.Conn.NumRight())}
		}
		return nil
	}
	if d.SystemLex != nil {
		if err := check("system lexicon", d.SystemLex.MaxLeftID(), d.SystemLex.MaxRightID()); err != nil {
			return err
		}
	}
	if d.UserLex != nil {
		if err := check("user lexicon", d.UserLex.MaxLeftID(), d.UserLex.MaxRightID()); err != nil {
			return err
		}
	}
	if d.Unk != nil {
		if err := check("unknown-word handler", d.Unk.MaxLeftID(), d.Unk.MaxRightID()); err != nil {
			return err
		}
	}
	return nil
}

// Feature resolves a WordIdx to its feature string, regardless of
// which table it names.
func (d *Dictionary) Feature(idx WordIdx) string {
	switch idx.LexType {
	case LexSystem:
		return d.SystemLex.Feature(idx.WordID)
	case LexUser:
		return d.UserLex.Feature(idx.WordID)
	case LexUnknown:
		return d.Unk.Entry(idx.WordID).Feature
	default:
		return ""
	}
}

// DoMapping replaces Conn with mapper's remapped Connector and
// rewrites every lexicon's and the unknown-word handler's left/right
// ids to match, then records mapper so later remaps of incoming user
// dictionaries can use the same permutation. Call once, before
// constructing any Worker against this Dictionary.
func (d *Dictionary) DoMapping(mapper *ConnIdMapper) error {
	newConn, err := mapper.RemapConnector(d.Conn)
	if err != nil {
		return err
	}
	if d.SystemLex != nil {
		d.SystemLex.RemapIDs(mapper.Left, mapper.Right)
	}
	if d.UserLex != nil {
		d.UserLex.RemapIDs(mapper.Left, mapper.Right)
	}
	d.Unk.RemapIDs(mapper.Left, mapper.Right)
	d.Conn = newConn
	d.Mapper = mapper
	return nil
}
