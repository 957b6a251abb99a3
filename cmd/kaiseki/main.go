// Command kaiseki is a thin driver over package morph: it builds a
// binary dictionary envelope from text dictionary sources, and
// tokenizes sentences against one. It owns no analyzer logic of its
// own; every operation here is a direct call into morph.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/steosofficial/kaiseki/morph"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "tokenize":
		err = runTokenize(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("kaiseki: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kaiseki build ... | kaiseki tokenize ...")
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	lexPath := fs.String("lex", "", "system lexicon CSV path (required)")
	userPath := fs.String("user", "", "user lexicon CSV path (optional)")
	matrixPath := fs.String("matrix", "", "connection-cost matrix.def path (required)")
	charPath := fs.String("chardef", "", "char.def path (required)")
	unkPath := fs.String("unkdef", "", "unk.def path (required)")
	outPath := fs.String("out", "", "output binary dictionary path (required)")
	remap := fs.Bool("remap", false, "reorder connection ids by training-path frequency before writing")
	corpusPath := fs.String("corpus", "", "newline-delimited sentences to count best-path connection id usage for -remap")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *lexPath == "" || *matrixPath == "" || *charPath == "" || *unkPath == "" || *outPath == "" {
		fs.Usage()
		return fmt.Errorf("build: -lex, -matrix, -chardef, -unkdef, and -out are required")
	}

	charProp, err := parseCharDefFile(*charPath)
	if err != nil {
		return err
	}
	conn, err := parseMatrixFile(*matrixPath)
	if err != nil {
		return err
	}
	sysLex, err := parseLexiconFile(*lexPath, morph.LexSystem)
	if err != nil {
		return err
	}
	unk, err := parseUnkDefFile(*unkPath, charProp)
	if err != nil {
		return err
	}
	var userLex *morph.Lexicon
	if *userPath != "" {
		userLex, err = parseLexiconFile(*userPath, morph.LexUser)
		if err != nil {
			return err
		}
	}

	dict, err := morph.NewDictionary(sysLex, userLex, conn, charProp, unk)
	if err != nil {
		return err
	}

	if *remap {
		if *corpusPath == "" {
			return fmt.Errorf("build: -remap requires -corpus")
		}
		if err := remapByCorpus(dict, *corpusPath); err != nil {
			return err
		}
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := morph.EncodeDictionary(out, dict); err != nil {
		return err
	}
	log.Printf("wrote %s", *outPath)
	return nil
}

func remapByCorpus(dict *morph.Dictionary, corpusPath string) error {
	f, err := os.Open(corpusPath)
	if err != nil {
		return err
	}
	defer f.Close()

	counter := morph.NewConnIdCounter(dict.Conn.NumLeft(), dict.Conn.NumRight())
	w := morph.NewWorker(dict)
	opts := morph.DefaultTokenizeOptions()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if _, err := w.Tokenize(line, opts); err != nil {
			return fmt.Errorf("corpus line %q: %w", line, err)
		}
		w.CountBestPath(counter)
	}
	if err := sc.Err(); err != nil {
		return err
	}

	mapper := morph.BuildConnIdMapper(counter)
	return dict.DoMapping(mapper)
}

func runTokenize(args []string) error {
	fs := flag.NewFlagSet("tokenize", flag.ExitOnError)
	dictPath := fs.String("dict", "", "binary dictionary path (required)")
	mmapFlag := fs.Bool("mmap", true, "memory-map the dictionary file instead of reading it fully")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dictPath == "" {
		fs.Usage()
		return fmt.Errorf("tokenize: -dict is required")
	}

	var dict *morph.Dictionary
	var err error
	if *mmapFlag {
		dict, err = morph.LoadDictionaryMmap(*dictPath)
	} else {
		var data []byte
		data, err = os.ReadFile(*dictPath)
		if err == nil {
			dict, err = morph.DecodeDictionary(data)
		}
	}
	if err != nil {
		return err
	}

	w := morph.NewWorker(dict)
	opts := morph.DefaultTokenizeOptions()

	rest := fs.Args()
	var lines []string
	if len(rest) > 0 {
		lines = rest
	} else {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return err
		}
	}

	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()
	for _, line := range lines {
		tokens, err := w.Tokenize(line, opts)
		if err != nil {
			return err
		}
		for _, t := range tokens {
			fmt.Fprintf(stdout, "%s\t%s\n", t.Surface, t.Feature)
		}
		fmt.Fprintln(stdout, "EOS")
	}
	return nil
}

func parseCharDefFile(path string) (*morph.CharProperty, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return morph.ParseCharDef(f)
}

func parseMatrixFile(path string) (*morph.Connector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return morph.ParseMatrixDef(f)
}

func parseLexiconFile(path string, lexType morph.LexType) (*morph.Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return morph.ParseLexiconCSV(f, lexType)
}

func parseUnkDefFile(path string, charProp *morph.CharProperty) (*morph.UnkHandler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return morph.ParseUnkDefCSV(f, charProp)
}
