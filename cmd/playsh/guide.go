package main

// guideText is the markdown guide rendered by `playsh guide`.
const guideText = `# playsh — playground shell guide

playsh runs a restricted POSIX-flavored shell inside one or more **playground
roots**. Every path a command touches is validated against those roots; a path
outside them simply does not exist:

` + "```" + `
$ playsh exec 'cat /etc/passwd'
cat: /etc/passwd: No such file or directory
` + "```" + `

Symlinks are never followed, not even symlinks that point back inside the
playground.

## Commands

| Command | Flags | Notes |
|---------|-------|-------|
| ls      | -a -l | entry listing capped with a summary line |
| cd      |       | no argument returns home |
| pwd     |       | |
| cat     |       | files or piped input |
| echo    | -n    | no variable expansion; $HOME prints literally |
| grep    | -i -n -v -r | Go regexp syntax |
| find    | -name -type | recursive, symlinks skipped |
| wc      | -l -w -c | |
| head    | -n N  | default 10 lines |
| tail    | -n N  | default 10 lines |
| sort    | -r -u | |
| uniq    | -c    | adjacent duplicates only |
| mkdir   | -p    | |
| rmdir   |       | empty directories only |
| touch   |       | |
| rm      | -r    | soft delete into the trash |
| mv      |       | atomic rename within the playground |
| cp      | -r    | |
| date    |       | |

## Pipes, quoting, redirects

* Pipes: ` + "`cat log.txt | grep error | head -n 5`" + ` — up to 10 stages.
* Quoting: single quotes are literal, double quotes allow ` + "`\\\"`" + ` escapes.
* Globs: unquoted ` + "`*`" + `, ` + "`?`" + `, ` + "`[...]`" + ` expand against the
  current directory; quoted patterns stay literal.
* Redirects: ` + "`>`" + `, ` + "`>>`" + `, ` + "`2>`" + `, ` + "`2>>`" + `, ` + "`<`" + `.
  Targets go through the same boundary validation as every other path.
* Chains (` + "`&&`" + `, ` + "`||`" + `, ` + "`;`" + `): only the first segment runs.

## Trash

` + "`rm`" + ` never unlinks. Targets move into ` + "`.trash`" + ` under the playground
home. Inspect with ` + "`playsh trash list`" + `, reclaim space with
` + "`playsh trash empty`" + `.

## Configuration

` + "```yaml" + `
# ~/.playsh/config.yaml
version: "1"
sandbox:
  roots:
    - ~/projects/*        # glob patterns, expanded once at startup
  home: ~/projects/main   # optional; defaults to the first root
limits:
  max_pipeline_depth: 10
  max_output_lines: 200
` + "```" + `

` + "`playsh doctor`" + ` checks the config and sandbox health.
`
