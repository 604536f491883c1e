package schema

import (
	"sort"

	siteconf "github.com/hpcops/siteconf"
)

// Record encoders rebuild document trees from typed records. Field order is
// fixed per kind (kind tag first), and empty optional attributes are
// dropped, so two structurally equal records always serialize identically.

func putStr(m *siteconf.Node, key, v string) {
	if v != "" {
		m.Set(key, siteconf.Scalar(v))
	}
}

func putStrs(m *siteconf.Node, key string, vs []string) {
	if len(vs) == 0 {
		return
	}
	items := make([]*siteconf.Node, len(vs))
	for i, v := range vs {
		items[i] = siteconf.Scalar(v)
	}
	m.Set(key, siteconf.Sequence(items...))
}

func putU32(m *siteconf.Node, key string, v *uint32) {
	if v != nil {
		m.Set(key, siteconf.Scalar(*v))
	}
}

func (u *User) encode() *siteconf.Node {
	m := siteconf.Mapping()
	m.Set("kind", siteconf.Scalar(string(KindUser)))
	putStr(m, "fullname", u.Fullname)
	putStr(m, "email", u.Email)
	m.Set("uid", siteconf.Scalar(u.UID))
	m.Set("gid", siteconf.Scalar(u.GID))
	putStrs(m, "groups", u.Groups)
	putStr(m, "password", u.Password)
	putStr(m, "shell", u.Shell)
	putStr(m, "home", u.Home)
	putStrs(m, "tags", u.Tags)
	putStr(m, "ensure", u.Ensure)
	putStr(m, "membership", u.Membership)
	if u.Storage != nil {
		m.Set("storage", u.Storage.encode())
	}
	return m
}

func (st *UserStorage) encode() *siteconf.Node {
	m := siteconf.Mapping()
	if st.ZFS != nil {
		m.Set("zfs", st.ZFS.encode())
	}
	if st.Autofs != nil {
		m.Set("autofs", st.Autofs.encode())
	}
	return m
}

func (z *ZFS) encode() *siteconf.Node {
	if z.Enabled != nil {
		return siteconf.Scalar(*z.Enabled)
	}
	m := siteconf.Mapping()
	if z.Spec != nil {
		putStr(m, "quota", z.Spec.Quota)
	}
	return m
}

func (a *Autofs) encode() *siteconf.Node {
	m := siteconf.Mapping()
	putStr(m, "nas", a.NAS)
	putStr(m, "path", a.Path)
	return m
}

func (g *Group) encode() *siteconf.Node {
	m := siteconf.Mapping()
	m.Set("kind", siteconf.Scalar(string(KindGroup)))
	m.Set("gid", siteconf.Scalar(g.GID))
	putStrs(m, "members", g.Members)
	putStr(m, "ensure", g.Ensure)
	putStrs(m, "tags", g.Tags)
	if len(g.Storage) > 0 {
		items := make([]*siteconf.Node, len(g.Storage))
		for i := range g.Storage {
			items[i] = g.Storage[i].encode()
		}
		m.Set("storage", siteconf.Sequence(items...))
	}
	if g.Slurm != nil {
		m.Set("slurm", g.Slurm.encodeBody())
	}
	return m
}

func (gs *GroupStorage) encode() *siteconf.Node {
	m := siteconf.Mapping()
	putStr(m, "name", gs.Name)
	putStr(m, "owner", gs.Owner)
	putStr(m, "group", gs.Group)
	if gs.ZFS != nil {
		m.Set("zfs", gs.ZFS.encode())
	}
	if gs.Autofs != nil {
		m.Set("autofs", gs.Autofs.encode())
	}
	return m
}

func (s *Storage) encode() *siteconf.Node {
	m := siteconf.Mapping()
	m.Set("kind", siteconf.Scalar(string(KindStorage)))
	putStr(m, "owner", s.Owner)
	putStr(m, "group", s.Group)
	if s.ZFS != nil {
		m.Set("zfs", s.ZFS.encode())
	}
	if s.Autofs != nil {
		m.Set("autofs", s.Autofs.encode())
	}
	return m
}

func (h *Host) encode() *siteconf.Node {
	m := siteconf.Mapping()
	m.Set("kind", siteconf.Scalar(string(KindHost)))
	putStr(m, "ip", h.IP)
	putStr(m, "domain", h.Domain)
	putStr(m, "environment", h.Environment)
	putStr(m, "layout", h.Layout)
	putStrs(m, "tags", h.Tags)
	return m
}

func (sa *SlurmAccess) encode() *siteconf.Node {
	m := sa.encodeBody()
	head := siteconf.Mapping()
	head.Set("kind", siteconf.Scalar(string(KindSlurmAccess)))
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		head.Set(k, v)
	}
	return head
}

// encodeBody emits the slurm attributes without the kind tag, for nesting
// under a group record.
func (sa *SlurmAccess) encodeBody() *siteconf.Node {
	m := siteconf.Mapping()
	putStrs(m, "account", sa.Accounts)
	if len(sa.Partitions) > 0 {
		parts := siteconf.Mapping()
		names := make([]string, 0, len(sa.Partitions))
		for n := range sa.Partitions {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			p := sa.Partitions[n]
			parts.Set(n, p.encode())
		}
		m.Set("partitions", parts)
	}
	putU32(m, "max_jobs", sa.MaxJobs)
	return m
}

func (sp *SlurmPartition) encode() *siteconf.Node {
	m := siteconf.Mapping()
	if sp.QOS != nil {
		m.Set("qos", sp.QOS.encode())
	}
	return m
}

func (q *SlurmQOS) encode() *siteconf.Node {
	m := siteconf.Mapping()
	if q.Group != nil {
		m.Set("group", q.Group.encode())
	}
	if q.Job != nil {
		m.Set("job", q.Job.encode())
	}
	putU32(m, "priority", q.Priority)
	return m
}

func (t *SlurmTRES) encode() *siteconf.Node {
	m := siteconf.Mapping()
	putU32(m, "cpus", t.CPUs)
	putU32(m, "gpus", t.GPUs)
	putStr(m, "mem", t.Mem)
	return m
}
