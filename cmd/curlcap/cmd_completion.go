package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func completionCmd(args []string) int {
	fs := pflag.NewFlagSet("completion", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: curlcap completion <bash|zsh|fish>\n\n")
		fmt.Fprintf(os.Stderr, "Generate shell completion scripts.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  curlcap completion bash > /usr/local/etc/bash_completion.d/curlcap\n")
		fmt.Fprintf(os.Stderr, "  curlcap completion zsh > \"${fpath[1]}/_curlcap\"\n")
		fmt.Fprintf(os.Stderr, "  curlcap completion fish > ~/.config/fish/completions/curlcap.fish\n")
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: shell name is required (bash, zsh, or fish)\n\n")
		fs.Usage()
		return 1
	}

	script, err := completionScript(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Print(script)
	return 0
}

func completionScript(shell string) (string, error) {
	switch shell {
	case "bash":
		return generateBashCompletion(), nil
	case "zsh":
		return generateZshCompletion(), nil
	case "fish":
		return generateFishCompletion(), nil
	default:
		return "", fmt.Errorf("unsupported shell %q (use bash, zsh, or fish)", shell)
	}
}

func generateBashCompletion() string {
	return `# bash completion for curlcap                            -*- shell-script -*-

_curlcap() {
    local cur prev words cword
    _init_completion || return

    local commands="tui watch targets history completion version help"

    local common_flags="--addr --dial-timeout --log-level"
    local tui_flags="${common_flags} --target"
    local watch_flags="${common_flags} --target --har --export-dir --save"
    local targets_flags="${common_flags} --all"
    local history_flags="--db --limit --search --clear"
    local log_levels="debug info warn error"
    local shells="bash zsh fish"

    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
        return
    fi

    local command="${words[1]}"

    case "${prev}" in
        --log-level)
            COMPREPLY=($(compgen -W "${log_levels}" -- "${cur}"))
            return
            ;;
        --har|--db)
            _filedir
            return
            ;;
        --export-dir)
            _filedir -d
            return
            ;;
        --addr|--dial-timeout|--target|-t|--limit|-n|--search)
            return
            ;;
    esac

    case "${command}" in
        tui)
            COMPREPLY=($(compgen -W "${tui_flags}" -- "${cur}"))
            ;;
        watch)
            COMPREPLY=($(compgen -W "${watch_flags}" -- "${cur}"))
            ;;
        targets)
            COMPREPLY=($(compgen -W "${targets_flags}" -- "${cur}"))
            ;;
        history)
            COMPREPLY=($(compgen -W "${history_flags}" -- "${cur}"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "${shells}" -- "${cur}"))
            ;;
    esac
}

complete -F _curlcap curlcap
`
}

func generateZshCompletion() string {
	return `#compdef curlcap

# zsh completion for curlcap

_curlcap() {
    local -a commands common
    commands=(
        'tui:Interactive request list'
        'watch:Print requests as they complete'
        'targets:List the browser page targets'
        'history:Show archives saved so far'
        'completion:Generate shell completion scripts'
        'version:Print version information'
        'help:Show help message'
    )
    common=(
        '--addr[DevTools host:port of the browser]:address:'
        '--dial-timeout[How long to wait for the browser]:duration:'
        '--log-level[Log level]:level:(debug info warn error)'
    )

    _arguments -C \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe -t commands 'curlcap commands' commands
            ;;
        args)
            case $words[1] in
                tui)
                    _arguments $common \
                        '--target[Target id to capture]:target id:'
                    ;;
                watch)
                    _arguments $common \
                        '--target[Target id to capture]:target id:' \
                        '--har[Write a HAR file on exit]:file:_files' \
                        '--export-dir[Directory for saved archives]:directory:_files -/' \
                        '--save[Save an archive for every completed request]'
                    ;;
                targets)
                    _arguments $common \
                        '--all[Include non-page targets]'
                    ;;
                history)
                    _arguments \
                        '--db[Export history database]:file:_files' \
                        '--limit[Number of entries]:count:' \
                        '--search[URL substring]:text:' \
                        '--clear[Delete all history entries]'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_curlcap "$@"
`
}

func generateFishCompletion() string {
	return `# fish completion for curlcap

complete -c curlcap -f

# Subcommands
complete -c curlcap -n '__fish_use_subcommand' -a tui -d 'Interactive request list'
complete -c curlcap -n '__fish_use_subcommand' -a watch -d 'Print requests as they complete'
complete -c curlcap -n '__fish_use_subcommand' -a targets -d 'List the browser page targets'
complete -c curlcap -n '__fish_use_subcommand' -a history -d 'Show archives saved so far'
complete -c curlcap -n '__fish_use_subcommand' -a completion -d 'Generate shell completion scripts'
complete -c curlcap -n '__fish_use_subcommand' -a version -d 'Print version information'
complete -c curlcap -n '__fish_use_subcommand' -a help -d 'Show help message'

# Shared flags
complete -c curlcap -n '__fish_seen_subcommand_from tui watch targets' -l addr -d 'DevTools host:port of the browser' -r
complete -c curlcap -n '__fish_seen_subcommand_from tui watch targets' -l dial-timeout -d 'How long to wait for the browser' -r
complete -c curlcap -n '__fish_seen_subcommand_from tui watch targets' -l log-level -d 'Log level' -ra 'debug info warn error'

# tui and watch
complete -c curlcap -n '__fish_seen_subcommand_from tui watch' -s t -l target -d 'Target id to capture' -r
complete -c curlcap -n '__fish_seen_subcommand_from watch' -l har -d 'Write a HAR file on exit' -rF
complete -c curlcap -n '__fish_seen_subcommand_from watch' -l export-dir -d 'Directory for saved archives' -rF
complete -c curlcap -n '__fish_seen_subcommand_from watch' -s s -l save -d 'Save an archive for every completed request'

# targets
complete -c curlcap -n '__fish_seen_subcommand_from targets' -s a -l all -d 'Include non-page targets'

# history
complete -c curlcap -n '__fish_seen_subcommand_from history' -l db -d 'Export history database' -rF
complete -c curlcap -n '__fish_seen_subcommand_from history' -s n -l limit -d 'Number of entries' -r
complete -c curlcap -n '__fish_seen_subcommand_from history' -l search -d 'URL substring' -r
complete -c curlcap -n '__fish_seen_subcommand_from history' -l clear -d 'Delete all history entries'

# completion
complete -c curlcap -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish' -d 'Shell type'
`
}
