package identity

import "strings"

// SalesmanCutoff is the minimum name similarity for a fuzzy salesman match.
const SalesmanCutoff = 0.80

// User is one official user as the resolver sees it.
type User struct {
	ID       string
	Username string
	Name     string
}

// OfficialName pairs a user id with that user's normalised name.
type OfficialName struct {
	ID    string
	Clean string
}

// Directory holds the lookup tables a Resolver consults.
type Directory struct {
	// Codes maps a lower-cased, trimmed username to a user id.
	Codes map[string]string
	// Digits maps a digit run to the only user whose username carries it.
	Digits map[string]string
	// Names lists normalised official names in directory order.
	Names []OfficialName
}

// BuildDirectory derives the lookup tables from users in directory order.
// A later user with a duplicated username replaces the earlier code entry.
// A digit run found in more than one username is left out of Digits so it
// can never resolve.
func BuildDirectory(users []User) Directory {
	dir := Directory{
		Codes:  make(map[string]string, len(users)),
		Digits: make(map[string]string),
		Names:  make([]OfficialName, 0, len(users)),
	}
	digitOwners := make(map[string][]string)
	for _, user := range users {
		code := strings.TrimSpace(strings.ToLower(user.Username))
		dir.Codes[code] = user.ID
		dir.Names = append(dir.Names, OfficialName{ID: user.ID, Clean: NormalizeName(user.Name)})
		if digits := digitRun.FindString(code); digits != "" {
			digitOwners[digits] = append(digitOwners[digits], user.ID)
		}
	}
	for digits, owners := range digitOwners {
		if len(owners) == 1 {
			dir.Digits[digits] = owners[0]
		}
	}
	return dir
}

// Resolver maps raw salesman fragments to official user ids.
type Resolver struct {
	dir        Directory
	cleanNames []string
}

// NewResolver builds a resolver over dir.
func NewResolver(dir Directory) *Resolver {
	cleanNames := make([]string, len(dir.Names))
	for i, name := range dir.Names {
		cleanNames[i] = name.Clean
	}
	return &Resolver{dir: dir, cleanNames: cleanNames}
}

// Resolve returns the official user id for one raw salesman fragment. It
// tries an embedded salesman code, then a standalone digit run unique to one
// username, then a fuzzy match of the cleaned name against official names.
func (r *Resolver) Resolve(raw string) (string, bool) {
	if r == nil {
		return "", false
	}
	text := strings.TrimSpace(strings.ToLower(raw))

	if code := ExtractSalesmanCode(text); code != "" {
		if id, ok := r.dir.Codes[code]; ok {
			return id, true
		}
	}
	for _, digits := range standaloneDigits(text) {
		if id, ok := r.dir.Digits[digits]; ok {
			return id, true
		}
	}

	core := CleanSalesmanName(text)
	if core == "" {
		return "", false
	}
	match, ok := ClosestMatch(core, r.cleanNames, SalesmanCutoff)
	if !ok {
		return "", false
	}
	for _, name := range r.dir.Names {
		if name.Clean == match {
			return name.ID, true
		}
	}
	return "", false
}

// ResolveField splits a multi-salesman field and resolves each fragment.
// The callback sees every fragment in order with its resolution result.
func (r *Resolver) ResolveField(field string, each func(fragment, id string, ok bool)) {
	for _, fragment := range SplitSalesmanField(field) {
		id, ok := r.Resolve(fragment)
		each(fragment, id, ok)
	}
}
