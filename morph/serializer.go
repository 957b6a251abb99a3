package morph

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/gob"
	"io"
	"os"
	"unsafe"

	"github.com/edsrzf/mmap-go"
)

// dictMagic identifies the binary dictionary envelope: a fixed Header,
// a gzip+gob "complex" block for variable-length metadata, then
// concatenated fixed-width raw sections suitable for zero-copy mmap
// loading: a fixed Header, a gzip+gob "complex" block for
// variable-length metadata, and raw mmap-able arrays for the
// trie/connector/char-table/lexicon sections.
var dictMagic = [4]byte{'K', 'A', 'I', '1'}

// header is the binary envelope's fixed-size map of the file. Apart
// from Magic and the HasUser flag, every field is a byte offset, an
// element count, or a matrix dimension, so the raw sections can be
// recovered as typed slices without copying.
type header struct {
	Magic [4]byte

	ComplexOffset int64
	ComplexLength int64

	SysBaseOffset, SysBaseCount   int64
	SysCheckOffset, SysCheckCount int64
	SysValueOffset, SysValueCount int64
	SysPostOffset, SysPostCount   int64
	SysParamOffset, SysParamCount int64

	HasUser int64

	UsrBaseOffset, UsrBaseCount   int64
	UsrCheckOffset, UsrCheckCount int64
	UsrValueOffset, UsrValueCount int64
	UsrPostOffset, UsrPostCount   int64
	UsrParamOffset, UsrParamCount int64

	ConnOffset, ConnCount       int64
	ConnNumLeft, ConnNumRight   int64

	CharTableOffset, CharTableCount int64
}

// complexData holds every variable-length or pointer-bearing piece of
// a Dictionary: feature strings, the unknown-word rule table, and the
// character category declarations. It round-trips through gob inside
// a gzip stream, since this metadata compresses well and is read only
// once per dictionary load.
type complexData struct {
	SysFeatures []string
	UsrFeatures []string

	UnkEntries []UnkEntry
	UnkOffsets []int

	CharCategories []CharCategory
	CharNameToID   map[string]int
	CharDefault    uint32

	// ConnIdMapper's fields are all unexported, so gob cannot encode
	// the type directly; its four permutation arrays are carried as
	// plain exported slices instead and reassembled on decode.
	HasMapper         bool
	MapLeftOldToNew   []uint16
	MapLeftNewToOld   []uint16
	MapRightOldToNew  []uint16
	MapRightNewToOld  []uint16
}

// EncodeDictionary writes dict's binary envelope to w.
func EncodeDictionary(w io.Writer, dict *Dictionary) error {
	cd := complexData{
		SysFeatures:    dict.SystemLex.features,
		UnkEntries:     dict.Unk.entries,
		UnkOffsets:     dict.Unk.offsets,
		CharCategories: dict.CharProp.categories,
		CharNameToID:   dict.CharProp.nameToID,
		CharDefault:    dict.CharProp.defaultPacked,
	}
	if dict.UserLex != nil {
		cd.UsrFeatures = dict.UserLex.features
	}
	if dict.Mapper != nil {
		cd.HasMapper = true
		cd.MapLeftOldToNew = dict.Mapper.leftOldToNew
		cd.MapLeftNewToOld = dict.Mapper.leftNewToOld
		cd.MapRightOldToNew = dict.Mapper.rightOldToNew
		cd.MapRightNewToOld = dict.Mapper.rightNewToOld
	}

	var gobBuf bytes.Buffer
	gz := gzip.NewWriter(&gobBuf)
	if err := gob.NewEncoder(gz).Encode(&cd); err != nil {
		return &EncodeError{Msg: "complex block: " + err.Error()}
	}
	if err := gz.Close(); err != nil {
		return &EncodeError{Msg: "complex block gzip: " + err.Error()}
	}

	var h header
	h.Magic = dictMagic
	h.ComplexLength = int64(gobBuf.Len())

	sections := [][]byte{gobBuf.Bytes()}
	offset := int64(binary.Size(h))
	h.ComplexOffset = offset
	offset += h.ComplexLength

	place := func(data []byte, outOffset, outCount *int64, count int64) {
		*outOffset = offset
		*outCount = count
		sections = append(sections, data)
		offset += int64(len(data))
	}

	place(sliceToBytes(dict.SystemLex.wordMap.trie.base), &h.SysBaseOffset, &h.SysBaseCount, int64(len(dict.SystemLex.wordMap.trie.base)))
	place(sliceToBytes(dict.SystemLex.wordMap.trie.check), &h.SysCheckOffset, &h.SysCheckCount, int64(len(dict.SystemLex.wordMap.trie.check)))
	place(sliceToBytes(dict.SystemLex.wordMap.trie.value), &h.SysValueOffset, &h.SysValueCount, int64(len(dict.SystemLex.wordMap.trie.value)))
	place(dict.SystemLex.wordMap.postings, &h.SysPostOffset, &h.SysPostCount, int64(len(dict.SystemLex.wordMap.postings)))
	place(sliceToBytes(dict.SystemLex.params), &h.SysParamOffset, &h.SysParamCount, int64(len(dict.SystemLex.params)))

	if dict.UserLex != nil {
		h.HasUser = 1
		place(sliceToBytes(dict.UserLex.wordMap.trie.base), &h.UsrBaseOffset, &h.UsrBaseCount, int64(len(dict.UserLex.wordMap.trie.base)))
		place(sliceToBytes(dict.UserLex.wordMap.trie.check), &h.UsrCheckOffset, &h.UsrCheckCount, int64(len(dict.UserLex.wordMap.trie.check)))
		place(sliceToBytes(dict.UserLex.wordMap.trie.value), &h.UsrValueOffset, &h.UsrValueCount, int64(len(dict.UserLex.wordMap.trie.value)))
		place(dict.UserLex.wordMap.postings, &h.UsrPostOffset, &h.UsrPostCount, int64(len(dict.UserLex.wordMap.postings)))
		place(sliceToBytes(dict.UserLex.params), &h.UsrParamOffset, &h.UsrParamCount, int64(len(dict.UserLex.params)))
	}

	h.ConnNumLeft = int64(dict.Conn.numLeft)
	h.ConnNumRight = int64(dict.Conn.numRight)
	place(sliceToBytes(dict.Conn.costs), &h.ConnOffset, &h.ConnCount, int64(len(dict.Conn.costs)))

	place(sliceToBytes(dict.CharProp.table), &h.CharTableOffset, &h.CharTableCount, int64(len(dict.CharProp.table)))

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return &EncodeError{Msg: "header: " + err.Error()}
	}
	for _, s := range sections {
		if _, err := w.Write(s); err != nil {
			return &EncodeError{Msg: "section: " + err.Error()}
		}
	}
	return nil
}

// DecodeDictionary reconstructs a Dictionary from a fully-buffered
// envelope (data owned by the caller; used for in-memory tests and
// non-mmap loading). LoadDictionaryMmap is the zero-copy counterpart.
func DecodeDictionary(data []byte) (*Dictionary, error) {
	return decodeFrom(data)
}

// LoadDictionaryMmap memory-maps path and builds a Dictionary whose
// raw sections alias the mapped pages directly, avoiding a full
// in-memory copy for large dictionaries. The returned Dictionary keeps
// mm alive for as long as it or any Worker built against it is in
// use; callers that need to release the mapping should arrange their
// own lifetime management, since Dictionary has no Close and never
// unmaps its backing pages itself.
func LoadDictionaryMmap(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, &DecodeError{Msg: "mmap: " + err.Error()}
	}
	return decodeFrom([]byte(mm))
}

func decodeFrom(data []byte) (*Dictionary, error) {
	var h header
	hdrSize := int(unsafe.Sizeof(h))
	if len(data) < hdrSize {
		return nil, &DecodeError{Msg: "file too small for header"}
	}
	if err := binary.Read(bytes.NewReader(data[:hdrSize]), binary.LittleEndian, &h); err != nil {
		return nil, &DecodeError{Msg: "header: " + err.Error()}
	}
	if h.Magic != dictMagic {
		return nil, &DecodeError{Msg: "bad magic"}
	}

	complexBytes := data[h.ComplexOffset : h.ComplexOffset+h.ComplexLength]
	gz, err := gzip.NewReader(bytes.NewReader(complexBytes))
	if err != nil {
		return nil, &DecodeError{Msg: "complex block gzip: " + err.Error()}
	}
	var cd complexData
	if err := gob.NewDecoder(gz).Decode(&cd); err != nil {
		return nil, &DecodeError{Msg: "complex block gob: " + err.Error()}
	}

	raw := func(offset, count int64) []byte {
		return data[offset : offset+count]
	}

	sysTrie := &Trie{
		base:  bytesToSlice[int32](raw(h.SysBaseOffset, h.SysBaseCount*4)),
		check: bytesToSlice[int32](raw(h.SysCheckOffset, h.SysCheckCount*4)),
		value: bytesToSlice[uint32](raw(h.SysValueOffset, h.SysValueCount*4)),
	}
	sysWM := &WordMap{trie: sysTrie, postings: raw(h.SysPostOffset, h.SysPostCount)}
	sysLex := &Lexicon{
		lexType:  LexSystem,
		wordMap:  sysWM,
		params:   bytesToSlice[WordParam](raw(h.SysParamOffset, h.SysParamCount*int64(unsafe.Sizeof(WordParam{})))),
		features: cd.SysFeatures,
	}

	var usrLex *Lexicon
	if h.HasUser != 0 {
		usrTrie := &Trie{
			base:  bytesToSlice[int32](raw(h.UsrBaseOffset, h.UsrBaseCount*4)),
			check: bytesToSlice[int32](raw(h.UsrCheckOffset, h.UsrCheckCount*4)),
			value: bytesToSlice[uint32](raw(h.UsrValueOffset, h.UsrValueCount*4)),
		}
		usrWM := &WordMap{trie: usrTrie, postings: raw(h.UsrPostOffset, h.UsrPostCount)}
		usrLex = &Lexicon{
			lexType:  LexUser,
			wordMap:  usrWM,
			params:   bytesToSlice[WordParam](raw(h.UsrParamOffset, h.UsrParamCount*int64(unsafe.Sizeof(WordParam{})))),
			features: cd.UsrFeatures,
		}
	}

	conn := &Connector{
		numLeft:  int(h.ConnNumLeft),
		numRight: int(h.ConnNumRight),
		costs:    bytesToSlice[int16](raw(h.ConnOffset, h.ConnCount*2)),
	}

	charProp := &CharProperty{
		categories:    cd.CharCategories,
		nameToID:      cd.CharNameToID,
		table:         bytesToSlice[uint32](raw(h.CharTableOffset, h.CharTableCount*4)),
		defaultPacked: cd.CharDefault,
	}

	unk := &UnkHandler{entries: cd.UnkEntries, offsets: cd.UnkOffsets}

	var mapper *ConnIdMapper
	if cd.HasMapper {
		mapper = &ConnIdMapper{
			leftOldToNew:  cd.MapLeftOldToNew,
			leftNewToOld:  cd.MapLeftNewToOld,
			rightOldToNew: cd.MapRightOldToNew,
			rightNewToOld: cd.MapRightNewToOld,
		}
	}

	dict := &Dictionary{
		SystemLex: sysLex,
		UserLex:   usrLex,
		Conn:      conn,
		CharProp:  charProp,
		Unk:       unk,
		Mapper:    mapper,
	}
	if bit, ok := charProp.CategoryBit("SPACE"); ok {
		dict.spaceBit, dict.hasSpaceBit = bit, true
	}
	if err := dict.validate(); err != nil {
		return nil, err
	}
	return dict, nil
}

// sliceToBytes reinterprets a slice of fixed-size values as a byte
// slice without copying, for writing raw sections verbatim.
func sliceToBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var t T
	size := int(unsafe.Sizeof(t))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*size)
}

// bytesToSlice reinterprets a byte slice as a slice of T without
// copying, aliasing the backing array (the mmap'd file, or a
// caller-owned buffer) directly.
func bytesToSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var t T
	size := int(unsafe.Sizeof(t))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/size)
}
