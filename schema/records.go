package schema

import (
	"fmt"
	"sort"

	siteconf "github.com/hpcops/siteconf"
)

// Kind discriminates record variants. The set is closed: every document
// member must name exactly one registered kind.
type Kind string

const (
	KindUser        Kind = "user"
	KindGroup       Kind = "group"
	KindStorage     Kind = "storage"
	KindHost        Kind = "host"
	KindSlurmAccess Kind = "slurm-access"
)

// Record is a typed, validated entity. The unexported encode method keeps
// the variant set closed to this package.
type Record interface {
	RecordKind() Kind
	RecordName() string
	encode() *siteconf.Node
}

// User is an account record in the internal provisioning schema.
type User struct {
	Name       string
	Fullname   string
	Email      string
	UID        uint32
	GID        uint32
	Groups     []string
	Password   string
	Shell      string
	Home       string
	Tags       []string
	Ensure     string
	Membership string
	Storage    *UserStorage
}

func (u *User) RecordKind() Kind   { return KindUser }
func (u *User) RecordName() string { return u.Name }

// UserStorage describes a user's home/archive storage provisioning.
type UserStorage struct {
	ZFS    *ZFS
	Autofs *Autofs
}

// ZFS is a union field: documents write either a bare boolean toggle or a
// full mapping with quota settings. Exactly one of the two members is set.
type ZFS struct {
	Enabled *bool
	Spec    *ZFSSpec
}

// ZFSSpec is the mapping form of the zfs union.
type ZFSSpec struct {
	Quota string
}

// Autofs names the NAS export a mount comes from.
type Autofs struct {
	NAS  string
	Path string
}

// Group is a POSIX group record, optionally carrying storage shares and a
// nested slurm access grant.
type Group struct {
	Name    string
	GID     uint32
	Members []string
	Ensure  string
	Tags    []string
	Storage []GroupStorage
	Slurm   *SlurmAccess
}

func (g *Group) RecordKind() Kind   { return KindGroup }
func (g *Group) RecordName() string { return g.Name }

// GroupStorage is one share owned by a group.
type GroupStorage struct {
	Name   string
	Owner  string
	Group  string
	ZFS    *ZFS
	Autofs *Autofs
}

// Storage is a standalone share record not tied to a single group.
type Storage struct {
	Name   string
	Owner  string
	Group  string
	ZFS    *ZFS
	Autofs *Autofs
}

func (s *Storage) RecordKind() Kind   { return KindStorage }
func (s *Storage) RecordName() string { return s.Name }

// Host is a managed machine record. Layout names the disk-layout fragment
// the installer templates use; the projector requires it but the schema
// allows partial host definitions to merge across layers.
type Host struct {
	Name        string
	IP          string
	Domain      string
	Environment string
	Layout      string
	Tags        []string
}

func (h *Host) RecordKind() Kind   { return KindHost }
func (h *Host) RecordName() string { return h.Name }

// SlurmAccess grants scheduler access, either standalone or nested under a
// group record.
type SlurmAccess struct {
	Name       string
	Accounts   []string // scalar or sequence form in documents
	Partitions map[string]SlurmPartition
	MaxJobs    *uint32
}

func (s *SlurmAccess) RecordKind() Kind   { return KindSlurmAccess }
func (s *SlurmAccess) RecordName() string { return s.Name }

// SlurmPartition scopes a QOS to one partition.
type SlurmPartition struct {
	QOS *SlurmQOS
}

// SlurmQOS bundles group-wide and per-job resource limits.
type SlurmQOS struct {
	Group    *SlurmTRES
	Job      *SlurmTRES
	Priority *uint32
}

// SlurmTRES is a trackable-resource limit set.
type SlurmTRES struct {
	CPUs *uint32
	GPUs *uint32
	Mem  string
}

var allShells = append(append([]string{}, enabledShells...), disabledShells...)

// ---- decoders ----

func decodeUser(name string, n *siteconf.Node, path string) (Record, siteconf.Issues) {
	d := NewDecoder(n, path)
	d.Skip("kind", "name")
	u := &User{Name: name}
	u.Fullname, _ = d.ReqStr("fullname")
	u.Email, _ = d.ReqPattern("email", ValidEmail, "an email address")
	u.UID, _ = d.ReqUint32("uid")
	u.GID, _ = d.ReqUint32("gid")
	u.Groups, _ = d.StrSet("groups")
	u.Password, _ = d.Str("password")
	u.Shell, _ = d.Enum("shell", allShells...)
	u.Home, _ = d.Str("home")
	u.Tags, _ = d.StrSet("tags")
	u.Ensure, _ = d.Enum("ensure", "present", "absent")
	u.Membership, _ = d.Enum("membership", "inclusive", "minimum")
	if c, p, ok := d.Mapping("storage"); ok {
		st, iss := decodeUserStorage(c, p)
		d.Merge(iss)
		u.Storage = st
	}
	return u, d.Finish()
}

func decodeUserStorage(n *siteconf.Node, path string) (*UserStorage, siteconf.Issues) {
	d := NewDecoder(n, path)
	st := &UserStorage{}
	if c, ok := d.Take("zfs"); ok {
		z, iss := decodeZFS(c, JoinPath(path, "zfs"))
		d.Merge(iss)
		st.ZFS = z
	} else {
		d.Fail("zfs", siteconf.CodeRequired, "required attribute missing")
	}
	if c, p, ok := d.Mapping("autofs"); ok {
		a, iss := decodeAutofs(c, p)
		d.Merge(iss)
		st.Autofs = a
	}
	return st, d.Finish()
}

func decodeAutofs(n *siteconf.Node, path string) (*Autofs, siteconf.Issues) {
	d := NewDecoder(n, path)
	a := &Autofs{}
	a.NAS, _ = d.ReqStr("nas")
	a.Path, _ = d.ReqStr("path")
	return a, d.Finish()
}

// decodeZFS resolves the zfs union. Candidate order matches the registry
// declaration: the mapping spec first, then the boolean toggle.
func decodeZFS(n *siteconf.Node, path string) (*ZFS, siteconf.Issues) {
	v, iss := resolveUnion(n, path,
		unionCandidate{
			name:    "zfs settings mapping",
			matches: func(c *siteconf.Node) bool { return c.Kind() == siteconf.KindMapping },
			decode: func(c *siteconf.Node, p string) (any, siteconf.Issues) {
				d := NewDecoder(c, p)
				spec := &ZFSSpec{}
				spec.Quota, _ = d.ReqPattern("quota", ValidQuota, "a data quota such as 100G")
				return &ZFS{Spec: spec}, d.Finish()
			},
		},
		unionCandidate{
			name: "boolean toggle",
			matches: func(c *siteconf.Node) bool {
				_, ok := c.ScalarValue().(bool)
				return ok
			},
			decode: func(c *siteconf.Node, p string) (any, siteconf.Issues) {
				b := c.ScalarValue().(bool)
				return &ZFS{Enabled: &b}, nil
			},
		},
	)
	if v == nil {
		return nil, iss
	}
	return v.(*ZFS), iss
}

func decodeGroup(name string, n *siteconf.Node, path string) (Record, siteconf.Issues) {
	d := NewDecoder(n, path)
	d.Skip("kind", "name")
	g := &Group{Name: name}
	g.GID, _ = d.ReqUint32("gid")
	g.Members, _ = d.StrSet("members")
	g.Ensure, _ = d.Enum("ensure", "present", "absent")
	g.Tags, _ = d.StrSet("tags")
	if c, ok := d.Take("storage"); ok {
		if c.Kind() != siteconf.KindSequence {
			d.Fail("storage", siteconf.CodeInvalidType, "expected sequence, got "+c.Kind().String())
		} else {
			for i, item := range c.Items() {
				p := JoinPath(path, fmt.Sprintf("storage[%d]", i))
				if item.Kind() != siteconf.KindMapping {
					d.Merge(siteconf.Issues{{Path: p, Code: siteconf.CodeInvalidType, Message: "expected mapping, got " + item.Kind().String()}})
					continue
				}
				gs, iss := decodeGroupStorage(item, p)
				d.Merge(iss)
				g.Storage = append(g.Storage, *gs)
			}
		}
	}
	if c, p, ok := d.Mapping("slurm"); ok {
		sa, iss := decodeSlurmBody(name, c, p)
		d.Merge(iss)
		g.Slurm = sa
	}
	return g, d.Finish()
}

func decodeGroupStorage(n *siteconf.Node, path string) (*GroupStorage, siteconf.Issues) {
	d := NewDecoder(n, path)
	gs := &GroupStorage{}
	gs.Name, _ = d.ReqStr("name")
	gs.Owner, _ = d.ReqPattern("owner", ValidKerberosID, "a principal name")
	gs.Group, _ = d.Str("group")
	if c, ok := d.Take("zfs"); ok {
		z, iss := decodeZFS(c, JoinPath(path, "zfs"))
		d.Merge(iss)
		gs.ZFS = z
	}
	if c, p, ok := d.Mapping("autofs"); ok {
		a, iss := decodeAutofs(c, p)
		d.Merge(iss)
		gs.Autofs = a
	}
	return gs, d.Finish()
}

func decodeStorage(name string, n *siteconf.Node, path string) (Record, siteconf.Issues) {
	d := NewDecoder(n, path)
	d.Skip("kind", "name")
	s := &Storage{Name: name}
	s.Owner, _ = d.ReqPattern("owner", ValidKerberosID, "a principal name")
	s.Group, _ = d.Str("group")
	if c, ok := d.Take("zfs"); ok {
		z, iss := decodeZFS(c, JoinPath(path, "zfs"))
		d.Merge(iss)
		s.ZFS = z
	} else {
		d.Fail("zfs", siteconf.CodeRequired, "required attribute missing")
	}
	if c, p, ok := d.Mapping("autofs"); ok {
		a, iss := decodeAutofs(c, p)
		d.Merge(iss)
		s.Autofs = a
	}
	return s, d.Finish()
}

func decodeHost(name string, n *siteconf.Node, path string) (Record, siteconf.Issues) {
	d := NewDecoder(n, path)
	d.Skip("kind", "name")
	h := &Host{Name: name}
	h.IP, _ = d.Pattern("ip", ValidIPv4, "an IPv4 address")
	h.Domain, _ = d.Str("domain")
	h.Environment, _ = d.Str("environment")
	h.Layout, _ = d.Str("layout")
	h.Tags, _ = d.StrSet("tags")
	return h, d.Finish()
}

func decodeSlurmAccess(name string, n *siteconf.Node, path string) (Record, siteconf.Issues) {
	return decodeSlurmBody(name, n, path)
}

// decodeSlurmBody validates the slurm attribute set shared by the
// standalone slurm-access kind and the nested group field.
func decodeSlurmBody(name string, n *siteconf.Node, path string) (*SlurmAccess, siteconf.Issues) {
	d := NewDecoder(n, path)
	d.Skip("kind", "name")
	sa := &SlurmAccess{Name: name}
	if c, ok := d.Take("account"); ok {
		// Union: a single account name or a sequence of them, tried in
		// that declaration order.
		v, iss := resolveUnion(c, JoinPath(path, "account"),
			unionCandidate{
				name:    "account name",
				matches: func(u *siteconf.Node) bool { _, ok := asString(u); return ok },
				decode: func(u *siteconf.Node, p string) (any, siteconf.Issues) {
					s, _ := asString(u)
					return []string{s}, nil
				},
			},
			unionCandidate{
				name:    "sequence of account names",
				matches: func(u *siteconf.Node) bool { return u.Kind() == siteconf.KindSequence },
				decode: func(u *siteconf.Node, p string) (any, siteconf.Issues) {
					var iss siteconf.Issues
					out := make([]string, 0, u.Len())
					for i, it := range u.Items() {
						s, ok := asString(it)
						if !ok {
							iss = siteconf.AppendIssues(iss, siteconf.Issue{
								Path: fmt.Sprintf("%s[%d]", p, i), Code: siteconf.CodeInvalidType,
								Message: "expected string, got " + describe(it),
							})
							continue
						}
						out = append(out, s)
					}
					sort.Strings(out)
					return out, iss
				},
			},
		)
		d.Merge(iss)
		if v != nil {
			sa.Accounts = v.([]string)
		}
	}
	if c, p, ok := d.Mapping("partitions"); ok {
		sa.Partitions = map[string]SlurmPartition{}
		for _, pname := range c.Keys() {
			pn, _ := c.Get(pname)
			pp := JoinPath(p, pname)
			if pn.Kind() != siteconf.KindMapping {
				d.Merge(siteconf.Issues{{Path: pp, Code: siteconf.CodeInvalidType, Message: "expected mapping, got " + pn.Kind().String()}})
				continue
			}
			part, iss := decodeSlurmPartition(pn, pp)
			d.Merge(iss)
			sa.Partitions[pname] = *part
		}
	}
	if v, ok := d.Uint32("max_jobs"); ok {
		sa.MaxJobs = &v
	}
	return sa, d.Finish()
}

func decodeSlurmPartition(n *siteconf.Node, path string) (*SlurmPartition, siteconf.Issues) {
	d := NewDecoder(n, path)
	sp := &SlurmPartition{}
	if c, p, ok := d.Mapping("qos"); ok {
		q, iss := decodeSlurmQOS(c, p)
		d.Merge(iss)
		sp.QOS = q
	}
	return sp, d.Finish()
}

func decodeSlurmQOS(n *siteconf.Node, path string) (*SlurmQOS, siteconf.Issues) {
	d := NewDecoder(n, path)
	q := &SlurmQOS{}
	if c, p, ok := d.Mapping("group"); ok {
		t, iss := decodeSlurmTRES(c, p)
		d.Merge(iss)
		q.Group = t
	}
	if c, p, ok := d.Mapping("job"); ok {
		t, iss := decodeSlurmTRES(c, p)
		d.Merge(iss)
		q.Job = t
	}
	if v, ok := d.Uint32("priority"); ok {
		q.Priority = &v
	}
	return q, d.Finish()
}

func decodeSlurmTRES(n *siteconf.Node, path string) (*SlurmTRES, siteconf.Issues) {
	d := NewDecoder(n, path)
	t := &SlurmTRES{}
	if v, ok := d.Uint32("cpus"); ok {
		t.CPUs = &v
	}
	if v, ok := d.Uint32("gpus"); ok {
		t.GPUs = &v
	}
	t.Mem, _ = d.Pattern("mem", ValidQuota, "a data quota such as 100G")
	return t, d.Finish()
}
