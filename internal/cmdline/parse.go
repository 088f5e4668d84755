// Package cmdline tokenizes and resolves the ":" command and ">" jump
// languages and builds their completion candidates.
package cmdline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Taishi66/kdeck/internal/domain"
)

// Mode selects which vocabulary a line is resolved against.
type Mode int

const (
	ModeCommand Mode = iota
	ModeJump
)

// Verb is the resolved meaning of a line's first token.
type Verb int

const (
	VerbNone Verb = iota
	VerbUnknown
	VerbSearch
	VerbQuit
	VerbRefresh
	VerbContext
	VerbCluster
	VerbUser
	VerbNamespace
	VerbKind
	VerbDelete
	VerbRestart
	VerbScale
	VerbExec
	VerbShell
	VerbEdit
	VerbPortForward
	VerbLogs
	VerbCRD
	VerbOverview
	VerbHelp
	VerbSlot
)

type keyword struct {
	verb  Verb
	words []string
	jump  bool
}

// keywords lists every verb with its synonyms. The first word is the
// canonical spelling offered by completion.
var keywords = []keyword{
	{VerbQuit, []string{"quit", "q", "q!", "exit"}, false},
	{VerbRefresh, []string{"refresh", "r", "reload"}, false},
	{VerbContext, []string{"ctx", "context", "use-context"}, true},
	{VerbCluster, []string{"cluster"}, true},
	{VerbUser, []string{"user", "usr"}, true},
	{VerbNamespace, []string{"ns", "namespace"}, true},
	{VerbDelete, []string{"delete", "del", "rm"}, false},
	{VerbRestart, []string{"restart", "rollout"}, false},
	{VerbScale, []string{"scale"}, false},
	{VerbExec, []string{"exec"}, false},
	{VerbShell, []string{"shell", "sh", "bash"}, false},
	{VerbEdit, []string{"edit", "e"}, false},
	{VerbPortForward, []string{"pf", "port-forward", "forward"}, false},
	{VerbLogs, []string{"logs", "log"}, false},
	{VerbCRD, []string{"crd", "crds"}, true},
	{VerbOverview, []string{"overview", "ov"}, false},
	{VerbHelp, []string{"help", "h", "?"}, false},
	{VerbSlot, []string{"slot"}, false},
}

// Line is a tokenized and resolved input line.
type Line struct {
	Verb  Verb
	Kind  domain.Kind // set when Verb is VerbKind
	Word  string      // the token that resolved the verb, lowercased
	Args  []string
	Query string // the whole line without its leader, for VerbSearch
}

// Arg returns the i-th argument or "".
func (l Line) Arg(i int) string {
	if i < 0 || i >= len(l.Args) {
		return ""
	}
	return l.Args[i]
}

// Tokenize strips an optional leading ":" or ">" and splits the rest on
// whitespace.
func Tokenize(input string) []string {
	return strings.Fields(stripLeader(input))
}

func stripLeader(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, ":")
	s = strings.TrimPrefix(s, ">")
	return strings.TrimSpace(s)
}

// Parse resolves input in the given mode. A head token made of chained
// prefixes ("namespace:ns") is tried segment by segment and falls back to
// its first segment. Unmatched jump input becomes a full-text search.
func Parse(mode Mode, input string) Line {
	body := stripLeader(input)
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return Line{Verb: VerbNone}
	}

	segments := strings.Split(fields[0], ":")
	word := strings.ToLower(segments[0])
	verb, kind, ok := VerbUnknown, domain.Kind(0), false
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if v, k, found := lookup(mode, seg); found {
			word, verb, kind, ok = strings.ToLower(seg), v, k, true
			break
		}
	}

	line := Line{Verb: verb, Kind: kind, Word: word, Args: fields[1:], Query: body}
	if !ok && mode == ModeJump {
		line.Verb = VerbSearch
	}
	return line
}

// lookup resolves one token against the mode's keywords, then kind tokens.
func lookup(mode Mode, token string) (Verb, domain.Kind, bool) {
	t := strings.ToLower(token)
	for _, kw := range keywords {
		if mode == ModeJump && !kw.jump {
			continue
		}
		for _, w := range kw.words {
			if t == w {
				return kw.verb, 0, true
			}
		}
	}
	if k, ok := domain.ParseKind(t); ok {
		return VerbKind, k, true
	}
	return VerbUnknown, 0, false
}

// ParseTarget splits "ns/name" into a row identity. A bare name returns
// qualified == false.
func ParseTarget(arg string) (id domain.RowIdentity, qualified bool) {
	if i := strings.Index(arg, "/"); i > 0 && i < len(arg)-1 {
		return domain.RowIdentity{Namespace: arg[:i], Name: arg[i+1:]}, true
	}
	return domain.RowIdentity{Name: arg}, false
}

// ParsePortMapping parses "[LOCAL:]REMOTE". A single port maps to itself.
func ParsePortMapping(arg string) (local, remote int, err error) {
	localStr, remoteStr, found := strings.Cut(arg, ":")
	if !found {
		remoteStr = localStr
	}
	if local, err = parsePort(localStr); err != nil {
		return 0, 0, err
	}
	if remote, err = parsePort(remoteStr); err != nil {
		return 0, 0, err
	}
	return local, remote, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return p, nil
}

// ParseReplicas parses a non-negative replica count.
func ParseReplicas(arg string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid replica count %q", arg)
	}
	return int32(n), nil
}
