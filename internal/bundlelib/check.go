package bundlelib

import (
	"sort"

	"github.com/specialistvlad/vuldesign/internal/expr"
	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
)

// KnownFunc reports whether a name is a bundle a member may refer to.
type KnownFunc func(name string) bool

// CheckItem validates a bundle definition and returns the bundles its
// members refer to and the config names its expressions mention.
// Enum values, lengths, dimensions and defaults are only checked for
// syntax; nothing is evaluated.
func CheckItem(item model.BundleItem, known KnownFunc) (refs, confs map[string]struct{}, err error) {
	if !expr.IsIdentifier(item.Name) {
		return nil, nil, vulerr.New(vulerr.BundleInvalidName, "invalid bundle name %q", item.Name)
	}
	refs = make(map[string]struct{})
	confs = make(map[string]struct{})

	if item.IsAlias {
		if len(item.Members) != 1 || len(item.EnumMembers) != 0 {
			return nil, nil, vulerr.New(vulerr.BundleAliasMembers,
				"alias bundle %q must have exactly one member and no enum members, has %d member(s) and %d enum member(s)",
				item.Name, len(item.Members), len(item.EnumMembers))
		}
	}

	if len(item.EnumMembers) > 0 && !item.IsAlias {
		if len(item.Members) != 0 {
			return nil, nil, vulerr.New(vulerr.BundleEnumWithMembers, "enum bundle %q cannot have regular members", item.Name)
		}
		seen := make(map[string]struct{}, len(item.EnumMembers))
		for _, em := range item.EnumMembers {
			if err := checkMemberName(item.Name, em.Name, seen); err != nil {
				return nil, nil, err
			}
			if em.Value == "" {
				continue
			}
			if err := collect(confs, item.Name, em.Name, "value", em.Value); err != nil {
				return nil, nil, err
			}
		}
		return refs, confs, nil
	}

	seen := make(map[string]struct{}, len(item.Members))
	for _, m := range item.Members {
		if err := checkMemberName(item.Name, m.Name, seen); err != nil {
			return nil, nil, err
		}
		if m.Type == item.Name {
			return nil, nil, vulerr.New(vulerr.BundleCircular, "bundle %q member %q refers to the bundle itself", item.Name, m.Name)
		}
		ref, memberConfs, err := CheckMember(item.Name, m, known)
		if err != nil {
			return nil, nil, err
		}
		if ref != "" {
			refs[ref] = struct{}{}
		}
		for c := range memberConfs {
			confs[c] = struct{}{}
		}
	}
	return refs, confs, nil
}

// CheckMember validates one member in the scope called owner. It returns
// the bundle the member's type names, if any, and the config names the
// member's expressions mention. Module storages are checked with the same
// rule.
func CheckMember(owner string, m model.BundleMember, known KnownFunc) (ref string, confs map[string]struct{}, err error) {
	confs = make(map[string]struct{})

	switch {
	case m.UintLength != "":
		if m.Type != "" && m.Type != model.UintType {
			return "", nil, vulerr.New(vulerr.BundleUintType,
				"%s member %q has a length so its type must be %s, not %q", owner, m.Name, model.UintType, m.Type)
		}
		if err := collect(confs, owner, m.Name, "length", m.UintLength); err != nil {
			return "", nil, err
		}
	case m.Type == model.UintType:
		return "", nil, vulerr.New(vulerr.BundleUintType, "%s member %q of type %s needs a length", owner, m.Name, model.UintType)
	case model.IsBasicType(m.Type):
	case known != nil && known(m.Type):
		if m.Value != "" {
			return "", nil, vulerr.New(vulerr.BundleDefaultNotAllowed,
				"%s member %q has bundle type %q and cannot have a default value", owner, m.Name, m.Type)
		}
		ref = m.Type
	default:
		return "", nil, vulerr.New(vulerr.BundleUnknownMemberType,
			"%s member %q has unknown type %q", owner, m.Name, m.Type)
	}

	for _, d := range m.Dims {
		if err := collect(confs, owner, m.Name, "dimension", d); err != nil {
			return "", nil, err
		}
	}
	if m.Value != "" {
		if err := collect(confs, owner, m.Name, "default value", m.Value); err != nil {
			return "", nil, err
		}
	}
	return ref, confs, nil
}

func checkMemberName(owner, name string, seen map[string]struct{}) error {
	if !expr.IsIdentifier(name) {
		return vulerr.New(vulerr.BundleInvalidName, "bundle %q has an invalid member name %q", owner, name)
	}
	if _, ok := seen[name]; ok {
		return vulerr.New(vulerr.BundleDuplicateMember, "bundle %q has duplicate member %q", owner, name)
	}
	seen[name] = struct{}{}
	return nil
}

func collect(confs map[string]struct{}, owner, member, what, src string) error {
	ids, err := expr.ExtractIdentifiers(src)
	if err != nil {
		return vulerr.Wrap(vulerr.BundleExprInvalid, err, "%s member %q has an invalid %s %q", owner, member, what, src)
	}
	for id := range ids {
		confs[id] = struct{}{}
	}
	return nil
}

// SameDefinition reports whether two bundle definitions are structurally
// identical. Comments and source locations are ignored.
func SameDefinition(a, b model.BundleItem) bool {
	if a.Name != b.Name || a.IsAlias != b.IsAlias ||
		len(a.Members) != len(b.Members) || len(a.EnumMembers) != len(b.EnumMembers) {
		return false
	}
	for i := range a.Members {
		x, y := a.Members[i], b.Members[i]
		if x.Name != y.Name || x.Type != y.Type || x.UintLength != y.UintLength || x.Value != y.Value {
			return false
		}
		if len(x.Dims) != len(y.Dims) {
			return false
		}
		for j := range x.Dims {
			if x.Dims[j] != y.Dims[j] {
				return false
			}
		}
	}
	for i := range a.EnumMembers {
		x, y := a.EnumMembers[i], b.EnumMembers[i]
		if x.Name != y.Name || x.Value != y.Value {
			return false
		}
	}
	return true
}

// memberTypes returns the sorted distinct member types of item.
func memberTypes(item model.BundleItem) []string {
	seen := make(map[string]struct{})
	for _, m := range item.Members {
		if m.Type != "" {
			seen[m.Type] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
