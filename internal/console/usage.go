package console

import (
	"fmt"
	"io"
)

const usage = `The following commands are available:
  help | --help          show this message
  podcasts <action>      manage podcasts (podcasts help for details)
  users <action>         manage accounts (users help for details)
  debug                  print build, host and podcast information
`

const podcastUsage = `The following podcast commands are available:
  podcasts refresh <rssFeedUrl>   fetch new episodes of one podcast and queue downloads
  podcasts refresh-all            refresh every registered podcast
  podcasts list                   list registered podcasts
  podcasts help | --help          show this message
`

const userUsage = `The following user commands are available:
  users add                 create an account
  users generate apiKey     assign a new api key to every account
  users remove              delete an account and everything it owns
  users update              change the role, password or consent of an account
  users list                list accounts
  users help | --help       show this message
`

func printUsage(w io.Writer)        { fmt.Fprint(w, usage) }
func printPodcastUsage(w io.Writer) { fmt.Fprint(w, podcastUsage) }
func printUserUsage(w io.Writer)    { fmt.Fprint(w, userUsage) }
