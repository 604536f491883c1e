package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	gojson "github.com/goccy/go-json"
	flag "github.com/spf13/pflag"

	siteconf "github.com/hpcops/siteconf"
	"github.com/hpcops/siteconf/hostconf"
	"github.com/hpcops/siteconf/i18n"
	"github.com/hpcops/siteconf/intake"
	"github.com/hpcops/siteconf/internal/atomicfile"
	"github.com/hpcops/siteconf/schema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "validate":
		validateCmd(os.Args[2:])
	case "convert":
		convertCmd(os.Args[2:])
	case "project":
		projectCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `siteconf CLI

Usage:
  siteconf validate [--strategy all|prefix|none] [--dump] [-o out.yaml] file...
  siteconf convert  [--key-dir DIR] [-o out.yaml] [policy flags] intake-file...
  siteconf project  [--host NAME] [site flags] [-o out.yaml] file...`)
}

func setupLogging(verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)
	return log
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	strategy := fs.String("strategy", "all", "merge strategy: all, prefix or none")
	dump := fs.Bool("dump", false, "write the canonical form of each validated document")
	out := fs.StringP("output", "o", "-", "dump destination (only with a single merge group)")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")
	_ = fs.Parse(args)
	log := setupLogging(*verbose)

	paths := fs.Args()
	if len(paths) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	forest, err := siteconf.ParseForest(paths, siteconf.MergeStrategy(*strategy))
	if err != nil {
		fatalf("%v", err)
	}

	reg := schema.DefaultRegistry()
	failed := false
	for _, key := range sortedKeys(forest) {
		set, err := reg.ValidateSource(key, forest[key])
		if err != nil {
			failed = true
			reportIssues(err)
			continue
		}
		log.Debug("validated", "source", key, "records", set.Len())
		if *dump {
			if len(forest) > 1 && *out != "-" {
				fatalf("--dump with -o requires a single merge group; got %d", len(forest))
			}
			if err := siteconf.WriteFile(*out, set.Dump()); err != nil {
				fatalf("write %s: %v", *out, err)
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	keyDir := fs.String("key-dir", "", "directory for extracted public key files")
	out := fs.StringP("output", "o", "-", "destination for the converted records")
	groupSuffix := fs.String("group-suffix", "grp", "suffix deriving a sponsor's access group name")
	minGID := fs.Uint32("min-sponsor-gid", 3_000_000, "gid offset for new sponsor groups")
	adminSponsors := fs.StringSlice("admin-sponsor", nil, "sponsors whose requests create sponsor accounts")
	defaultGroups := fs.StringSlice("default-group", nil, "groups granted to every converted account")
	sponsorGroups := fs.StringToString("sponsor-group", nil, "sponsor to group-name overrides")
	shell := fs.String("shell", schema.DefaultShell, "login shell for converted accounts")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")
	_ = fs.Parse(args)
	log := setupLogging(*verbose)

	paths := fs.Args()
	if len(paths) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	pol := intake.Policy{
		SponsorGroupSuffix: *groupSuffix,
		SponsorGroups:      *sponsorGroups,
		AdminSponsors:      *adminSponsors,
		MinSponsorGID:      *minGID,
		DefaultGroups:      *defaultGroups,
		DefaultShell:       *shell,
	}

	set := schema.NewSet()
	for _, p := range paths {
		rec, err := intake.Load(p)
		if err != nil {
			reportIssues(err)
			os.Exit(1)
		}
		res, err := intake.Convert(rec, pol)
		if err != nil {
			reportIssues(err)
			os.Exit(1)
		}
		set.Add(res.User)
		if res.Group != nil {
			set.Add(res.Group)
		}
		if res.Credential != nil {
			if *keyDir == "" {
				log.Warn("record carries a public key but no --key-dir was given",
					"user", res.Credential.Username)
			} else {
				path, err := res.Credential.WriteTo(*keyDir)
				if err != nil {
					fatalf("write key: %v", err)
				}
				log.Debug("wrote key", "path", path)
			}
		}
		log.Debug("converted", "file", p, "user", res.User.Name)
	}

	if err := siteconf.WriteFile(*out, set.Dump()); err != nil {
		fatalf("write %s: %v", *out, err)
	}
}

func projectCmd(args []string) {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	host := fs.String("host", "", "project a single host instead of all")
	out := fs.StringP("output", "o", "-", "destination for the projected contexts")
	asJSON := fs.Bool("json", false, "emit JSON instead of YAML")
	cobblerIP := fs.String("cobbler-ip", "", "provisioning server address")
	puppetIP := fs.String("puppet-ip", "", "puppet master address")
	puppetFQDN := fs.String("puppet-fqdn", "", "puppet master fqdn")
	environment := fs.String("environment", "production", "default puppet environment")
	keys := fs.StringSlice("authorized-key", nil, "root ssh keys installed on every host")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")
	_ = fs.Parse(args)
	log := setupLogging(*verbose)

	paths := fs.Args()
	if len(paths) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	forest, err := siteconf.ParseForest(paths, siteconf.MergeAll)
	if err != nil {
		fatalf("%v", err)
	}
	set, err := schema.DefaultRegistry().Validate(forest["merged-all"])
	if err != nil {
		reportIssues(err)
		os.Exit(1)
	}

	site := hostconf.SiteParams{
		CobblerIP:      *cobblerIP,
		PuppetIP:       *puppetIP,
		PuppetFQDN:     *puppetFQDN,
		Environment:    *environment,
		AuthorizedKeys: *keys,
	}

	var result any
	if *host != "" {
		h, ok := set.Host(*host)
		if !ok {
			fatalf("no host record named %q", *host)
		}
		ctx, err := hostconf.Project(h, site)
		if err != nil {
			reportIssues(err)
			os.Exit(1)
		}
		result = map[string]any(ctx)
	} else {
		ctxs, err := hostconf.ProjectSet(set, site)
		if err != nil {
			reportIssues(err)
			os.Exit(1)
		}
		m := map[string]any{}
		for name, ctx := range ctxs {
			m[name] = map[string]any(ctx)
		}
		result = m
	}
	log.Debug("projected", "hosts", *host)

	if *asJSON {
		data, err := gojson.MarshalIndent(result, "", "  ")
		if err != nil {
			fatalf("encode: %v", err)
		}
		writeRaw(*out, append(data, '\n'))
		return
	}
	if err := siteconf.WriteFile(*out, siteconf.FromAny(result)); err != nil {
		fatalf("write %s: %v", *out, err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func writeRaw(path string, data []byte) {
	if path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			fatalf("write stdout: %v", err)
		}
		return
	}
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		fatalf("write %s: %v", path, err)
	}
}

// reportIssues prints every accumulated diagnostic on its own line when the
// error carries them, falling back to the error text.
func reportIssues(err error) { reportIssuesTo(os.Stderr, err) }

func reportIssuesTo(w io.Writer, err error) {
	fmt.Fprintln(w, err)
	iss, ok := siteconf.AsIssues(err)
	if !ok {
		return
	}
	for _, it := range iss {
		fmt.Fprintln(w, "  "+issueLine(it))
	}
}

// issueLine renders one diagnostic with the catalog wording for its code;
// unknown codes pass through as-is. The issue's own message carries the
// specifics and follows the catalog phrase.
func issueLine(it siteconf.Issue) string {
	line := it.Path + ": " + i18n.T(it.Code, nil)
	if it.Message != "" {
		line += ": " + it.Message
	}
	if it.Hint != "" {
		line += " (" + it.Hint + ")"
	}
	return line
}

func sortedKeys(m map[string]*siteconf.Node) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
