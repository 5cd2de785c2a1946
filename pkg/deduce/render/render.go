// Package render formats proofs for people.
package render

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cognicore/deduce/pkg/deduce/prover"
)

// Line is one row of a rendered derivation.
type Line struct {
	N    int
	Fact string
	Rule string // empty for the axiom
}

// Lines replays a found proof into numbered rows.
func Lines[F comparable](p *prover.Prover[F], res prover.Result[F]) ([]Line, error) {
	if !res.Found() {
		return nil, nil
	}

	facts, err := res.Theorem.Trace(p)
	if err != nil {
		return nil, err
	}
	names := res.Theorem.RuleNames()

	lines := make([]Line, len(facts))
	for i, f := range facts {
		lines[i] = Line{N: i + 1, Fact: fmt.Sprint(f)}
		if i > 0 {
			lines[i].Rule = names[i-1]
		}
	}
	return lines, nil
}

func summary[F comparable](target F, res prover.Result[F]) string {
	switch res.Status {
	case prover.Found:
		return fmt.Sprintf("%v proved in %d steps (%d rounds, %d facts)", target, res.Theorem.Len(), res.Rounds, res.Explored)
	case prover.Exhausted:
		return fmt.Sprintf("%v is not derivable: rules saturated after %d rounds (%d facts)", target, res.Rounds, res.Explored)
	case prover.Aborted:
		return fmt.Sprintf("%v: search aborted by a rule error in round %d", target, res.Rounds)
	default:
		return fmt.Sprintf("%v not found within %d rounds (%d facts); a larger depth may help", target, res.Rounds, res.Explored)
	}
}

// Text writes a plain-text report of a search.
func Text[F comparable](w io.Writer, p *prover.Prover[F], target F, res prover.Result[F]) error {
	if _, err := fmt.Fprintln(w, summary(target, res)); err != nil {
		return err
	}

	lines, err := Lines(p, res)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if l.Rule == "" {
			_, err = fmt.Fprintf(w, "  %d. %s  (axiom)\n", l.N, l.Fact)
		} else {
			_, err = fmt.Fprintf(w, "  %d. %s  (rule %s)\n", l.N, l.Fact, l.Rule)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// HTML writes a standalone HTML page describing a search.
func HTML[F comparable](w io.Writer, title string, p *prover.Prover[F], target F, res prover.Result[F]) error {
	lines, err := Lines(p, res)
	if err != nil {
		return err
	}

	body := element(atom.Body, nil,
		element(atom.H1, nil, text(title)),
		element(atom.P, []html.Attribute{{Key: "class", Val: "status-" + res.Status.String()}},
			text(summary(target, res))),
	)

	if len(lines) > 0 {
		list := element(atom.Ol, []html.Attribute{{Key: "class", Val: "derivation"}})
		for _, l := range lines {
			item := element(atom.Li, nil, element(atom.Code, nil, text(l.Fact)))
			if l.Rule == "" {
				item.AppendChild(text(" axiom"))
			} else {
				item.AppendChild(text(" by rule "))
				item.AppendChild(element(atom.Em, nil, text(l.Rule)))
			}
			list.AppendChild(item)
		}
		body.AppendChild(list)
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(element(atom.Html, nil,
		element(atom.Head, nil,
			element(atom.Meta, []html.Attribute{{Key: "charset", Val: "utf-8"}}),
			element(atom.Title, nil, text(title)),
		),
		body,
	))

	return html.Render(w, doc)
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
