package shell

import (
	"embed"
	"errors"
	"path"
)

//go:embed helptext/*.txt
var helptext embed.FS

func usage(mode string) (*Response, error) {
	dat, err := helptext.ReadFile(path.Join("helptext", "usage-"+mode+".txt"))
	if err != nil {
		return nil, errors.New("error loading helptext: " + err.Error())
	}
	return msg(string(dat)), nil
}

func usageTopic(topic string) (*Response, error) {
	dat, err := helptext.ReadFile(path.Join("helptext", topic+".txt"))
	if err != nil {
		return nil, errors.New("there is no help text for the topic " + topic)
	}
	return msg(string(dat)), nil
}
