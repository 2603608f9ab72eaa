package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/hostsweep/pkg/version"
)

const banner = `
   __               __                               
  / /  ___  ___ ___/ /____    _____ ___ ___  ___    
 / _ \/ _ \(_-</ __(_-< |/|/ / -_) -_) _ \/ _ \   
/_//_/\___/___/\__/___/__,__/\__/\__/ .__/\___/   
                                   /_/            
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", au.Cyan(banner))
	gologger.Print().Msgf("\t\t%s\n\n", au.Faint("projectdiscovery.io "+version.Version))
}
