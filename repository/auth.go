package repository

import (
	"fmt"

	"github.com/utilitywarehouse/git-pushmirror/giturl"
)

// credentialHelper reads credentials from the env so that they
// never end up on disk or in the command line
const credentialHelper = `!f() { test "$1" = get && echo "username=${MIRROR_USERNAME}" && echo "password=${MIRROR_PASSWORD}"; }; f`

// authEnv returns envs needed by git to authenticate against given remote
func (r *Repository) authEnv(remote string) []string {
	if r.auth.IsZero() {
		return nil
	}

	switch {
	case giturl.IsSSH(remote):
		if r.auth.SSHKeyPath == "" {
			return nil
		}
		return []string{r.gitSSHCommand()}

	case giturl.IsHTTP(remote):
		if r.auth.Password == "" {
			return nil
		}
		username := r.auth.Username
		if username == "" {
			username = "-" // username is required
		}
		return []string{
			// first entry resets any helper from global/system config
			"GIT_CONFIG_COUNT=2",
			"GIT_CONFIG_KEY_0=credential.helper",
			"GIT_CONFIG_VALUE_0=",
			"GIT_CONFIG_KEY_1=credential.helper",
			"GIT_CONFIG_VALUE_1=" + credentialHelper,
			"GIT_TERMINAL_PROMPT=0",
			"MIRROR_USERNAME=" + username,
			"MIRROR_PASSWORD=" + r.auth.Password,
		}
	}

	return nil
}

// gitSSHCommand returns the environment variable to be used for configuring
// git over ssh with the configured key.
func (r *Repository) gitSSHCommand() string {
	knownHostsOptions := "-o UserKnownHostsFile=/dev/null -o StrictHostKeyChecking=no"
	if r.auth.SSHKnownHostsPath != "" {
		knownHostsOptions = fmt.Sprintf("-o UserKnownHostsFile=%s", r.auth.SSHKnownHostsPath)
	}
	return fmt.Sprintf(`GIT_SSH_COMMAND=ssh -q -F none -o IdentitiesOnly=yes -o IdentityFile=%s %s`, r.auth.SSHKeyPath, knownHostsOptions)
}
